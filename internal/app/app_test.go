package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

func testConfig(t *testing.T) *common.Config {
	t.Helper()
	chdir(t, t.TempDir())
	cfg, err := common.LoadConfig("")
	require.NoError(t, err)
	cfg.Database.DSN = "file:" + filepath.Join(t.TempDir(), "app.db")
	return cfg
}

func TestNew_WithStore(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	a, err := New(ctx, cfg, nil, Options{WithStore: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NotNil(t, a.DB)
	assert.Nil(t, a.Completer)
	assert.Equal(t, "pattern", a.Extractor.Name())

	out, err := a.Service.ExtractText(ctx, "", "CUIT: 30-66328849-7\nTotal: $1.234,56\n")
	require.NoError(t, err)
	got, err := a.Service.Get(ctx, out.Invoice.ID.String())
	require.NoError(t, err)
	assert.Equal(t, out.Invoice.ID, got.ID)
}

func TestNew_WithoutStore(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), nil, Options{Mode: "pattern"})
	require.NoError(t, err)
	assert.Nil(t, a.DB)
	assert.NoError(t, a.Close())
}

func TestNewCompleter(t *testing.T) {
	tests := []struct {
		provider string
		want     string
		wantErr  bool
	}{
		{provider: "", want: ""},
		{provider: "anthropic", want: "anthropic"},
		{provider: "openai", want: "openai"},
		{provider: "cohere", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			c, err := NewCompleter(common.LLMConfig{Provider: tt.provider}, nil)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			if tt.want == "" {
				assert.Nil(t, c)
				return
			}
			assert.Equal(t, tt.want, c.Provider())
		})
	}
}

func TestNewExtractor_Modes(t *testing.T) {
	completer, err := NewCompleter(common.LLMConfig{Provider: "openai"}, nil)
	require.NoError(t, err)

	tests := []struct {
		name      string
		mode      string
		withLLM   bool
		want      string
		wantError bool
	}{
		{"auto without provider", "auto", false, "pattern", false},
		{"auto with provider", "auto", true, "llm:openai+pattern", false},
		{"pattern ignores provider", "pattern", true, "pattern", false},
		{"llm", "llm", true, "llm:openai", false},
		{"llm without provider", "llm", false, "", true},
		{"unknown", "magic", true, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := completer
			if !tt.withLLM {
				c = nil
			}
			ex, err := NewExtractor(tt.mode, common.LLMConfig{}, c, nil)
			if tt.wantError {
				assert.ErrorIs(t, err, common.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ex.Name())
		})
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir on older Go).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
