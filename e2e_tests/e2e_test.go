package e2etests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

const (
	timeout   = 5 * time.Second
	waitReady = 20 * time.Second
)

var httpClient = &http.Client{Timeout: timeout}

func baseURL(t *testing.T) string {
	t.Helper()

	u := os.Getenv("E2E_BASE_URL")
	if u == "" {
		t.Skip("E2E_BASE_URL not set")
	}

	return u
}

func TestE2E_SingleRoundAuction(t *testing.T) {
	base := baseURL(t)
	waitUntilReady(t, base)

	run := uniq("")
	alice, bob, carol := "alice"+run, "bob"+run, "carol"+run

	for _, p := range []string{alice, bob, carol} {
		code, body := call(t, http.MethodPost, base+"/accounts/"+p+"/deposit",
			map[string]string{"amount": "1000", "txId": "e2e-seed-" + p}, nil)
		if code != http.StatusOK {
			t.Fatalf("deposit %s: want 200, got %d (%s)", p, code, body)
		}
	}

	t.Run("deposit_replay_is_noop", func(t *testing.T) {
		var acc struct {
			Balance  string `json:"balance"`
			Replayed bool   `json:"replayed"`
		}
		code, body := call(t, http.MethodPost, base+"/accounts/"+alice+"/deposit",
			map[string]string{"amount": "1000", "txId": "e2e-seed-" + alice}, &acc)
		if code != http.StatusOK {
			t.Fatalf("replay: want 200, got %d (%s)", code, body)
		}
		if !acc.Replayed || acc.Balance != "1000" {
			t.Fatalf("replay: want replayed balance 1000, got %+v", acc)
		}
	})

	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	code, body := call(t, http.MethodPost, base+"/auctions", map[string]any{
		"code":             "e2e" + run,
		"title":            "e2e lot",
		"lotsCount":        2,
		"maxRounds":        1,
		"roundDurationSec": 60,
	}, &created)
	if code != http.StatusCreated {
		t.Fatalf("create: want 201, got %d (%s)", code, body)
	}
	if created.Status != "draft" {
		t.Fatalf("create: want draft, got %s", created.Status)
	}

	auctionURL := base + "/auctions/" + created.ID

	code, body = call(t, http.MethodPost, auctionURL+"/start", nil, nil)
	if code != http.StatusOK {
		t.Fatalf("start: want 200, got %d (%s)", code, body)
	}

	bids := []struct{ who, amount string }{
		{alice, "100"},
		{bob, "90"},
		{carol, "80"},
	}
	for _, b := range bids {
		code, body = call(t, http.MethodPost, auctionURL+"/bids",
			map[string]string{"participantId": b.who, "amount": b.amount, "idempotencyKey": "k1"}, nil)
		if code != http.StatusOK {
			t.Fatalf("bid %s: want 200, got %d (%s)", b.who, code, body)
		}
	}

	t.Run("bid_below_min_increment", func(t *testing.T) {
		code, _ := call(t, http.MethodPost, auctionURL+"/bids",
			map[string]string{"participantId": alice, "amount": "50", "idempotencyKey": "k2"}, nil)
		if code != http.StatusUnprocessableEntity {
			t.Fatalf("lower bid: want 422, got %d", code)
		}
	})

	t.Run("insufficient_funds", func(t *testing.T) {
		code, _ := call(t, http.MethodPost, auctionURL+"/bids",
			map[string]string{"participantId": carol, "amount": "5000", "idempotencyKey": "k3"}, nil)
		if code != http.StatusPaymentRequired {
			t.Fatalf("big bid: want 402, got %d", code)
		}
	})

	var closed struct {
		Outcome string   `json:"outcome"`
		Winners []string `json:"winners"`
	}
	code, body = call(t, http.MethodPost, auctionURL+"/close-round", nil, &closed)
	if code != http.StatusOK {
		t.Fatalf("close: want 200, got %d (%s)", code, body)
	}
	if closed.Outcome != "finished" || len(closed.Winners) != 2 || closed.Winners[0] != alice || closed.Winners[1] != bob {
		t.Fatalf("close: unexpected result %s", body)
	}

	want := map[string]string{alice: "900", bob: "910", carol: "1000"}
	for p, bal := range want {
		var acc struct {
			Balance string `json:"balance"`
			Hold    string `json:"hold"`
		}
		code, body = call(t, http.MethodGet, base+"/accounts/"+p, nil, &acc)
		if code != http.StatusOK {
			t.Fatalf("account %s: want 200, got %d (%s)", p, code, body)
		}
		if acc.Balance != bal || acc.Hold != "0" {
			t.Fatalf("account %s: want balance %s hold 0, got %+v", p, bal, acc)
		}
	}

	t.Run("wins_listed", func(t *testing.T) {
		var wins struct {
			Wins []struct {
				AuctionID string `json:"auctionId"`
			} `json:"wins"`
		}
		code, body := call(t, http.MethodGet, base+"/participants/"+alice+"/wins", nil, &wins)
		if code != http.StatusOK || len(wins.Wins) != 1 || wins.Wins[0].AuctionID != created.ID {
			t.Fatalf("wins: got %d (%s)", code, body)
		}
	})

	t.Run("closed_auction_rejects_bids", func(t *testing.T) {
		code, _ := call(t, http.MethodPost, auctionURL+"/bids",
			map[string]string{"participantId": carol, "amount": "200", "idempotencyKey": "k4"}, nil)
		if code != http.StatusConflict {
			t.Fatalf("bid after finish: want 409, got %d", code)
		}
	})
}

func TestE2E_CancelReleasesHolds(t *testing.T) {
	base := baseURL(t)
	waitUntilReady(t, base)

	p := "dave" + uniq("")

	code, body := call(t, http.MethodPost, base+"/accounts/"+p+"/deposit",
		map[string]string{"amount": "50", "txId": "e2e-seed-" + p}, nil)
	if code != http.StatusOK {
		t.Fatalf("deposit: want 200, got %d (%s)", code, body)
	}

	var created struct {
		ID string `json:"id"`
	}
	code, body = call(t, http.MethodPost, base+"/auctions", map[string]any{
		"code": uniq("e2e-cancel"), "title": "cancel me", "lotsCount": 1,
	}, &created)
	if code != http.StatusCreated {
		t.Fatalf("create: want 201, got %d (%s)", code, body)
	}

	auctionURL := base + "/auctions/" + created.ID
	if code, body = call(t, http.MethodPost, auctionURL+"/start", nil, nil); code != http.StatusOK {
		t.Fatalf("start: want 200, got %d (%s)", code, body)
	}
	if code, body = call(t, http.MethodPost, auctionURL+"/bids",
		map[string]string{"participantId": p, "amount": "30", "idempotencyKey": "k1"}, nil); code != http.StatusOK {
		t.Fatalf("bid: want 200, got %d (%s)", code, body)
	}
	if code, body = call(t, http.MethodPost, auctionURL+"/cancel", nil, nil); code != http.StatusOK {
		t.Fatalf("cancel: want 200, got %d (%s)", code, body)
	}

	var acc struct {
		Available string `json:"available"`
	}
	if code, body = call(t, http.MethodGet, base+"/accounts/"+p, nil, &acc); code != http.StatusOK {
		t.Fatalf("account: want 200, got %d (%s)", code, body)
	}
	if acc.Available != "50" {
		t.Fatalf("after cancel: want available 50, got %s", acc.Available)
	}
}

func TestE2E_Validation(t *testing.T) {
	base := baseURL(t)
	waitUntilReady(t, base)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown_auction", http.MethodGet, "/auctions/00000000-0000-0000-0000-000000000000", nil, http.StatusNotFound},
		{"malformed_auction_id", http.MethodGet, "/auctions/not-a-uuid", nil, http.StatusNotFound},
		{"zero_lots", http.MethodPost, "/auctions", map[string]any{"code": uniq("bad"), "title": "t", "lotsCount": 0}, http.StatusBadRequest},
		{"bad_deposit_amount", http.MethodPost, "/accounts/x/deposit", map[string]string{"amount": "-1", "txId": "t"}, http.StatusBadRequest},
		{"bad_issue_status", http.MethodGet, "/reconcile/issues?status=bogus", nil, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, body := call(t, tc.method, base+tc.path, tc.body, nil)
			if code != tc.want {
				t.Fatalf("want %d, got %d (%s)", tc.want, code, body)
			}
		})
	}
}

/* -------------------- helpers -------------------- */

// call sends body as JSON (when non-nil) and decodes a 2xx response into out.
func call(t *testing.T, method, u string, body, out any) (int, string) {
	t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, u, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)

	if out != nil && resp.StatusCode/100 == 2 {
		err = json.Unmarshal(b, out)
		if err != nil {
			t.Fatalf("decode %s: %v", string(b), err)
		}
	}

	return resp.StatusCode, string(b)
}

// waitUntilReady waits until GET /healthz responds 200 or times out.
func waitUntilReady(t *testing.T, base string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), waitReady)
	defer cancel()

	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("service not ready at %s within %s", base, waitReady)
		case <-tick.C:
			resp, err := httpClient.Get(base + "/healthz")
			if err != nil {
				continue
			}
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
	}
}

func uniq(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
