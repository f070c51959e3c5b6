package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const invoiceText = `DISTRIBUIDORA NORTE S.A.
CUIT: 30-66328849-7
CODIGO 06
Factura Nro. 1305-76453547
Fecha de Emisión: 22/08/2023
Total a Pagar: $9,136.40
`

// setupCLI isolates config lookups in a temp dir with a sqlite store.
func setupCLI(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("EXTRACTOR_MODE", "")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_URL", "file:"+filepath.Join(dir, "cli.db"))
	t.Setenv("LOG_LEVEL", "error")

	path := filepath.Join(dir, "factura.txt")
	require.NoError(t, os.WriteFile(path, []byte(invoiceText), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestExtractCmd_PrintsPayload(t *testing.T) {
	path := setupCLI(t)

	out, err := run(t, "extract", path)
	require.NoError(t, err, out)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "1305-76453547", payload["invoiceNumber"])
	assert.Equal(t, "1305", payload["pointSale"])
	assert.Equal(t, "B", payload["invoiceType"])
	assert.InDelta(t, 9136.40, payload["amount"], 1e-9)
	assert.Contains(t, payload, "client")
}

func TestExtractCmd_Record(t *testing.T) {
	path := setupCLI(t)

	out, err := run(t, "extract", "--mode", "pattern", "--record", path)
	require.NoError(t, err, out)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &record))
	assert.Contains(t, record, "confidence")
	assert.Contains(t, record, "reasoning")
}

func TestExtractCmd_Errors(t *testing.T) {
	setupCLI(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing arg", []string{"extract"}},
		{"missing file", []string{"extract", "nope.pdf"}},
		{"llm without provider", []string{"extract", "--mode", "llm", "factura.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestAskAndSummaryCmd(t *testing.T) {
	path := setupCLI(t)

	out, err := run(t, "ask", path, "¿Cuál es el CUIT?")
	require.NoError(t, err, out)
	assert.Contains(t, out, "30-66328849-7")

	out, err = run(t, "summary", path)
	require.NoError(t, err, out)
	assert.Contains(t, out, "1305-76453547")
}

func TestIngestThenExport(t *testing.T) {
	path := setupCLI(t)
	dir := filepath.Dir(path)

	out, err := run(t, "ingest", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "succeeded=1")

	out, err = run(t, "ingest", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "reused=1")

	ledger := filepath.Join(dir, "ledger.xlsx")
	out, err = run(t, "export", "--out", ledger)
	require.NoError(t, err, out)

	f, err := excelize.OpenFile(ledger)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
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
