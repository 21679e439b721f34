package voice

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/laneguardian/laneguardian/internal/logger"
)

// slowThreshold mirrors the synthesis service's two-speed model: below
// it the endpoint's slow voice is requested, everything else plays at
// the normal voice and is tempo-shifted during encoding.
const slowThreshold = 0.8

// maxPhraseLen bounds a single synthesis request.
const maxPhraseLen = 200

// Params selects the synthesis voice.
type Params struct {
	Language string
	Accent   string
	Speed    float64
}

// Synthesizer turns a phrase into MP3 audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, p Params) ([]byte, error)
}

// GoogleSynthesizer calls the public translate TTS endpoint. The
// accent picks the regional host the request is routed through, which
// is what changes the voice.
type GoogleSynthesizer struct {
	client  *http.Client
	baseURL string
}

func NewGoogleSynthesizer(baseURL string, timeout time.Duration) *GoogleSynthesizer {
	if baseURL == "" {
		baseURL = "https://translate.google.com/translate_tts"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GoogleSynthesizer{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (g *GoogleSynthesizer) Synthesize(ctx context.Context, text string, p Params) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty phrase")
	}
	if len(text) > maxPhraseLen {
		cut := maxPhraseLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	u, err := url.Parse(g.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid synth endpoint: %w", err)
	}
	if p.Accent != "" && strings.HasPrefix(u.Host, "translate.google.") {
		u.Host = "translate.google." + p.Accent
	}

	lang := p.Language
	if lang == "" {
		lang = "en"
	}

	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("q", text)
	q.Set("tl", lang)
	if p.Speed > 0 && p.Speed < slowThreshold {
		q.Set("ttsspeed", "0.24")
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build synth request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synth request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("synth endpoint returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read synth response: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("synth endpoint returned no audio")
	}

	logger.Debug("phrase synthesized", "chars", len(text), "bytes", len(data), "lang", lang)
	return data, nil
}
