package voice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestSynthesizeRequestShape(t *testing.T) {
	var gotQuery map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"q":        r.URL.Query().Get("q"),
			"tl":       r.URL.Query().Get("tl"),
			"client":   r.URL.Query().Get("client"),
			"ttsspeed": r.URL.Query().Get("ttsspeed"),
		}
		w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	g := NewGoogleSynthesizer(srv.URL, time.Second)

	data, err := g.Synthesize(context.Background(), "Fang tooth is online", Params{Language: "en", Accent: "us", Speed: 1.0})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if string(data) != "mp3-bytes" {
		t.Errorf("unexpected audio payload %q", data)
	}
	if gotQuery["q"] != "Fang tooth is online" {
		t.Errorf("q = %q", gotQuery["q"])
	}
	if gotQuery["tl"] != "en" {
		t.Errorf("tl = %q", gotQuery["tl"])
	}
	if gotQuery["client"] != "tw-ob" {
		t.Errorf("client = %q", gotQuery["client"])
	}
	if gotQuery["ttsspeed"] != "" {
		t.Errorf("normal speed should not request the slow voice, got %q", gotQuery["ttsspeed"])
	}
}

func TestSynthesizeSlowVoice(t *testing.T) {
	var ttsspeed string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ttsspeed = r.URL.Query().Get("ttsspeed")
		w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	g := NewGoogleSynthesizer(srv.URL, time.Second)

	if _, err := g.Synthesize(context.Background(), "slow line", Params{Language: "en", Speed: 0.5}); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if ttsspeed == "" {
		t.Error("speed below threshold should request the slow voice")
	}
}

func TestSynthesizeTruncatesOnRuneBoundary(t *testing.T) {
	var got string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query().Get("q")
		w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	g := NewGoogleSynthesizer(srv.URL, time.Second)

	// a two-byte rune straddles the length cap
	long := strings.Repeat("a", maxPhraseLen-1) + "éxtra text past the cap"

	if _, err := g.Synthesize(context.Background(), long, Params{Language: "en"}); err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if !utf8.ValidString(got) {
		t.Errorf("truncated phrase is not valid UTF-8: %q", got)
	}
	if len(got) > maxPhraseLen {
		t.Errorf("phrase length %d exceeds cap", len(got))
	}
	if got != strings.Repeat("a", maxPhraseLen-1) {
		t.Errorf("expected the straddling rune dropped whole, got %q", got)
	}
}

func TestSynthesizeErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGoogleSynthesizer(srv.URL, time.Second)

	if _, err := g.Synthesize(context.Background(), "line", Params{Language: "en"}); err == nil {
		t.Error("expected error for non-200 response")
	}

	if _, err := g.Synthesize(context.Background(), "   ", Params{Language: "en"}); err == nil {
		t.Error("expected error for empty phrase")
	}
}

func TestSynthesizeEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	g := NewGoogleSynthesizer(srv.URL, time.Second)

	if _, err := g.Synthesize(context.Background(), "line", Params{Language: "en"}); err == nil {
		t.Error("expected error for empty audio body")
	}
}
