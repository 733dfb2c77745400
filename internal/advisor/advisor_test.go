package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

type stubGen struct {
	answer string
	err    error
	system string
	prompt string
}

func (s *stubGen) Generate(_ context.Context, system, prompt string) (string, error) {
	s.system, s.prompt = system, prompt
	return s.answer, s.err
}

func TestAdvise(t *testing.T) {
	t.Parallel()

	products := models.SeedProducts()

	tests := []struct {
		name string
		gen  Generator
		want string
	}{
		{name: "no generator", gen: nil, want: MsgNoKey},
		{name: "missing key", gen: &stubGen{err: ErrNoAPIKey}, want: MsgNoKey},
		{name: "transport failure", gen: &stubGen{err: errors.New("dial tcp")}, want: MsgTrouble},
		{name: "empty answer", gen: &stubGen{answer: "  \n"}, want: MsgEmpty},
		{name: "cites unknown product", gen: &stubGen{answer: "Try the Hoverboard (ID: 99)."}, want: MsgEmpty},
		{name: "grounded answer", gen: &stubGen{answer: "Try the watch (ID: 3)."}, want: "Try the watch (ID: 3)."},
		{name: "no citations", gen: &stubGen{answer: "We don't carry that."}, want: "We don't carry that."},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, New(tt.gen).Advise(context.Background(), "gift ideas", products))
		})
	}
}

func TestAdvise_PassesInventory(t *testing.T) {
	t.Parallel()

	gen := &stubGen{answer: "ok"}
	products := []models.Product{{ID: "42", Name: "Desk Lamp", Price: 19.5, Description: "Warm light.", Category: "Home"}}

	New(gen).Advise(context.Background(), "lamp?", products)
	assert.Equal(t, "lamp?", gen.prompt)
	assert.Contains(t, gen.system, "ShopGenie")
	assert.Contains(t, gen.system, "- Desk Lamp (ID: 42): $19.5. Warm light. Category: Home")
}

func TestGeminiGenerator(t *testing.T) {
	t.Parallel()

	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("x-goog-api-key"))
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &got)
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"Hello "},{"text":"there"}]}}]}`)
	}))
	t.Cleanup(srv.Close)

	g := NewGemini("k", "test-model")
	g.BaseURL = srv.URL

	out, err := g.Generate(context.Background(), "sys", "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello there", out)
	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "sys", got.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "hi", got.Contents[0].Parts[0].Text)
}

func TestGeminiGenerator_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewGemini("", "").Generate(context.Background(), "s", "p")
	require.ErrorIs(t, err, ErrNoAPIKey)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	g := NewGemini("k", "")
	g.BaseURL = srv.URL
	_, err = g.Generate(context.Background(), "s", "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}
