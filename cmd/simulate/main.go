package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// simulate hammers one slot with concurrent booking requests through the real
// HTTP API. With the per-slot lock and the active-booking re-check in place,
// exactly one request must win no matter how many workers race.

type simConfig struct {
	baseURL  string
	workers  int
	date     string
	slot     string
	password string
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := simConfig{password: "simulate-password-1"}
	flag.StringVar(&cfg.baseURL, "base-url", "http://localhost:8080", "API base URL")
	flag.IntVar(&cfg.workers, "workers", 50, "concurrent booking attempts")
	flag.StringVar(&cfg.date, "date", time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02"), "visit date (YYYY-MM-DD)")
	flag.StringVar(&cfg.slot, "slot", "09:00", "slot to contend on (HH:MM)")
	flag.Parse()

	gofakeit.Seed(time.Now().UnixNano())

	client := &http.Client{Timeout: 10 * time.Second}

	providerID, _, err := register(client, cfg, "DOCTOR")
	if err != nil {
		log.Fatalf("register doctor: %v", err)
	}
	log.Printf("provider %s, contending on %s %s with %d workers", providerID, cfg.date, cfg.slot, cfg.workers)

	tokens := make([]string, cfg.workers)
	for i := range tokens {
		_, token, err := register(client, cfg, "PATIENT")
		if err != nil {
			log.Fatalf("register patient %d: %v", i, err)
		}
		tokens[i] = token
	}

	var (
		success, conflict, other int64
		wg                       sync.WaitGroup
	)

	start := time.Now()
	for i := 0; i < cfg.workers; i++ {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			status, err := book(client, cfg, token, providerID)
			switch {
			case err != nil:
				atomic.AddInt64(&other, 1)
				log.Printf("booking error: %v", err)
			case status == http.StatusCreated:
				atomic.AddInt64(&success, 1)
			case status == http.StatusConflict:
				atomic.AddInt64(&conflict, 1)
			default:
				atomic.AddInt64(&other, 1)
				log.Printf("unexpected status: %d", status)
			}
		}(tokens[i])
	}
	wg.Wait()

	log.Printf("done in %s: success=%d conflict=%d other=%d", time.Since(start), success, conflict, other)
	if success != 1 {
		log.Fatalf("FAIL: expected exactly 1 successful booking, got %d", success)
	}
	log.Println("PASS: single winner under contention")
}

func register(client *http.Client, cfg simConfig, role string) (id, token string, err error) {
	body, _ := json.Marshal(map[string]string{
		"name":     gofakeit.Name(),
		"email":    gofakeit.Email(),
		"password": cfg.password,
		"role":     role,
	})

	resp, err := client.Post(cfg.baseURL+"/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		return "", "", fmt.Errorf("register returned %d: %s", resp.StatusCode, raw)
	}

	var out struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", err
	}
	return out.User.ID, out.Token, nil
}

func book(client *http.Client, cfg simConfig, token, providerID string) (int, error) {
	body, _ := json.Marshal(map[string]string{
		"providerId": providerID,
		"date":       cfg.date,
		"time":       cfg.slot,
		"modality":   "VIRTUAL",
	})

	req, err := http.NewRequest(http.MethodPost, cfg.baseURL+"/appointments", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
