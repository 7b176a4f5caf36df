package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	domanswer "github.com/kailas-cloud/estaterag/internal/domain/answer"
)

func TestParseListings(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    int
		wantErr bool
	}{
		{"wrapped", `{"listings":[{"neighborhood":"A"},{"neighborhood":"B"}]}`, 2, false},
		{"bare array", `[{"neighborhood":"A"}]`, 1, false},
		{"empty wrapped", `{"listings":[]}`, 0, false},
		{"object without listings", `{"foo":1}`, 0, true},
		{"garbage", `nope`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseListings([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestRun_IngestAndQuery(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/embeddings":
			var req struct {
				Input []string `json:"input"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			vec := []float32{1, float32(len(req.Input[0]) % 7), 0.5, 0.25}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"object": "list",
				"data":   []map[string]any{{"object": "embedding", "index": 0, "embedding": vec}},
				"usage":  map[string]any{"prompt_tokens": 3, "total_tokens": 3},
			})
		case "/chat/completions":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"object": "chat.completion",
				"choices": []map[string]any{{
					"index":   0,
					"message": map[string]any{"role": "assistant", "content": "Green Oaks."},
				}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer provider.Close()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "pipeline.yaml")
	cfgYAML := fmt.Sprintf(`
http:
  port: 8080
database:
  driver: memory
embedding:
  api_key: test
  base_url: %s
  dimensions: 4
logging:
  level: error
`, provider.URL)
	dataPath := filepath.Join(dir, "listings.json")
	data := `{"listings":[
		{"neighborhood":"Green Oaks","price":"$800,000","bedrooms":3},
		{"neighborhood":"Old Town","price":650000,"bedrooms":2}
	]}`
	for p, body := range map[string]string{cfgPath: cfgYAML, dataPath: data} {
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	var out bytes.Buffer
	err := run(context.Background(), options{
		configPath: cfgPath,
		dataPath:   dataPath,
		query:      "three bedrooms",
		k:          2,
		reset:      true,
	}, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var ans domanswer.Answer
	if err := json.Unmarshal(out.Bytes(), &ans); err != nil {
		t.Fatalf("output is not an answer: %v\n%s", err, out.String())
	}
	if ans.AnswerText != "Green Oaks." || len(ans.Sources) != 2 || ans.K != 2 {
		t.Errorf("unexpected answer: %+v", ans)
	}
}
