package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cipherkit/internal/dispatch"
	"cipherkit/internal/paths"
)

// runCLI executes the root command with a private home directory and
// returns stdout.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	// Flag variables outlive a single Execute.
	configFlag, verbosity, quietFlag, formatFlag, noHistoryOpt = "", 0, true, string(FormatHuman), false
	cipherParam, cipherFile = "", ""
	hashFile, hashAlgorithms, hashList = "", nil, false
	historyLimit, historyYes = 0, false
	stegoAlgorithm, stegoParam, stegoChannels, stegoOut, stegoFile = "", "", "", "", ""
	chatHTML, algorithmsLong, configShowDiff, configForce = false, false, false, false

	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)

	err := rootCmd.Execute()
	closeRuntime()
	return out.String(), err
}

func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(paths.HomeEnvVar, home)
	return home
}

func TestCLI_CipherRoundTrip(t *testing.T) {
	setHome(t)

	out, err := runCLI(t, "", "cipher", "caesar", "--param", "5", "hello", "world")
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	if strings.TrimSpace(out) != "mjqqt btwqi" {
		t.Errorf("cipher output = %q", out)
	}

	out, err = runCLI(t, "", "decrypt", "caesar", "-p", "5", "mjqqt btwqi")
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if strings.TrimSpace(out) != "hello world" {
		t.Errorf("decrypt output = %q", out)
	}
}

func TestCLI_CipherFromStdinAndFile(t *testing.T) {
	home := setHome(t)

	out, err := runCLI(t, "Hello\n", "encrypt", "atbash")
	if err != nil {
		t.Fatalf("stdin: %v", err)
	}
	if strings.TrimSpace(out) != "Svool" {
		t.Errorf("stdin output = %q", out)
	}

	path := filepath.Join(home, "msg.txt")
	if err := os.WriteFile(path, []byte("HELLOWORLD"), 0644); err != nil {
		t.Fatal(err)
	}
	out, err = runCLI(t, "", "cipher", "columnar", "--param", "ZEBRA", "--file", path)
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if strings.TrimSpace(out) != "ODLREOLLHW" {
		t.Errorf("file output = %q", out)
	}
}

func TestCLI_CipherJSON(t *testing.T) {
	setHome(t)

	out, err := runCLI(t, "", "cipher", "rail_fence", "--format", "json", "WEAREDISCOVEREDFLEEATONCE")
	if err != nil {
		t.Fatal(err)
	}
	var res dispatch.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if res.Output != "WECRLTEERDSOEEFEAOCAIVDEN" || res.Algorithm != "rail_fence" {
		t.Errorf("result = %+v", res)
	}
}

func TestCLI_CipherErrors(t *testing.T) {
	setHome(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown algorithm", []string{"cipher", "enigma", "hi"}, "UNSUPPORTED_ALGORITHM"},
		{"missing keyword", []string{"cipher", "mixed_alphabet", "hi"}, "MISSING_PARAMETER"},
		{"bad format", []string{"cipher", "atbash", "--format", "xml", "hi"}, "unsupported format"},
		{"text and file", []string{"cipher", "atbash", "--file", "x.txt", "hi"}, "not both"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, "", tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestCLI_Hash(t *testing.T) {
	home := setHome(t)

	out, err := runCLI(t, "", "hash", "--algorithm", "md5", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "5d41402abc4b2a76b9719d911017c592") {
		t.Errorf("hash output = %q", out)
	}

	path := filepath.Join(home, "data.bin")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	out, err = runCLI(t, "", "hash", "--file", path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"md5", "sha256", "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"} {
		if !strings.Contains(out, want) {
			t.Errorf("file hash output missing %q:\n%s", want, out)
		}
	}

	out, err = runCLI(t, "", "hash", "--list")
	if err != nil {
		t.Fatal(err)
	}
	if len(strings.Fields(out)) != 12 {
		t.Errorf("--list = %q", out)
	}

	if _, err := runCLI(t, "", "hash", "--algorithm", "crc32", "hello"); err == nil || !strings.Contains(err.Error(), "UNSUPPORTED_HASH") {
		t.Errorf("unsupported digest error = %v", err)
	}
}

func TestCLI_Algorithms(t *testing.T) {
	setHome(t)

	out, err := runCLI(t, "", "algorithms", "--format", "yaml")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(out, "- name:") != 11 {
		t.Errorf("expected 11 algorithms:\n%s", out)
	}
}

func TestCLI_Chat(t *testing.T) {
	setHome(t)

	out, err := runCLI(t, "/cipher atbash hello\n\n/hash\nnot a command\n", "chat")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Output: svool", "Please provide text to hash!", "Send /help"} {
		if !strings.Contains(out, want) {
			t.Errorf("chat output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<b>") {
		t.Errorf("chat output should be plain text:\n%s", out)
	}

	out, err = runCLI(t, "", "chat", "--html", "/encrypt", "caesar", "5", "hello")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "<code>mjqqt</code>") {
		t.Errorf("html reply = %q", out)
	}
}

func TestCLI_History(t *testing.T) {
	setHome(t)

	if _, err := runCLI(t, "", "cipher", "atbash", "secret"); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "", "cipher", "scytale", "--param", "9", "short"); err == nil {
		t.Fatal("expected scytale error")
	}

	out, err := runCLI(t, "", "history", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var resp HistoryResponseCLI
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(resp.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(resp.Entries))
	}
	if resp.Entries[0].ErrorCode != "INVALID_PARAMETER" || resp.Entries[1].Algorithm != "atbash" {
		t.Errorf("entries = %+v", resp.Entries)
	}
	if strings.Contains(out, "secret") || strings.Contains(out, "short") {
		t.Errorf("history leaked input text: %s", out)
	}

	out, err = runCLI(t, "", "history", "stats")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "scytale") {
		t.Errorf("stats = %q", out)
	}

	if _, err := runCLI(t, "", "history", "clear"); err == nil {
		t.Error("clear without --yes should fail")
	}
	out, err = runCLI(t, "", "history", "clear", "--yes")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Deleted 2 entries") {
		t.Errorf("clear output = %q", out)
	}
}

func TestCLI_NoHistory(t *testing.T) {
	setHome(t)

	if _, err := runCLI(t, "", "--no-history", "cipher", "atbash", "abc"); err != nil {
		t.Fatal(err)
	}
	out, err := runCLI(t, "", "history")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No history recorded.") {
		t.Errorf("history after --no-history = %q", out)
	}
}

func TestCLI_Config(t *testing.T) {
	home := setHome(t)

	out, err := runCLI(t, "", "config", "init")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, filepath.Join(home, "config.toml")) {
		t.Errorf("init output = %q", out)
	}
	if _, err := runCLI(t, "", "config", "init"); err == nil {
		t.Error("second init without --force should fail")
	}

	t.Setenv("CIPHERKIT_DEFAULTS_CAESAR_SHIFT", "1")
	out, err = runCLI(t, "", "config", "show", "--diff")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "defaults.caesar_shift = 1") {
		t.Errorf("show --diff = %q", out)
	}
	if !strings.Contains(out, "CIPHERKIT_DEFAULTS_CAESAR_SHIFT") {
		t.Errorf("show should list env overrides: %q", out)
	}

	out, err = runCLI(t, "", "cipher", "caesar", "abc")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "bcd" {
		t.Errorf("env default shift ignored: %q", out)
	}

	out, err = runCLI(t, "", "config", "env")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "CIPHERKIT_SERVER_ADDR") || !strings.Contains(out, "CIPHERKIT_HOME") {
		t.Errorf("env output = %q", out)
	}
}

func TestCLI_InvalidConfig(t *testing.T) {
	home := setHome(t)
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte("[defaults]\nrail_mode = \"sideways\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := runCLI(t, "", "cipher", "atbash", "abc"); err == nil || !strings.Contains(err.Error(), "rail_mode") {
		t.Errorf("invalid config error = %v", err)
	}
	if _, err := runCLI(t, "", "config", "show"); err != nil {
		t.Errorf("config show should tolerate an invalid config: %v", err)
	}
}

func TestCLI_Stego(t *testing.T) {
	home := setHome(t)

	cover := filepath.Join(home, "cover.png")
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 8), G: uint8(y * 8), B: 128, A: 255})
		}
	}
	f, err := os.Create(cover)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	stego := filepath.Join(home, "stego.png")
	out, err := runCLI(t, "", "stego", "embed", cover, "--out", stego, "--algorithm", "caesar", "--param", "7", "meet at noon")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if !strings.Contains(out, "Embedded 12 bytes of caesar ciphertext") {
		t.Errorf("embed output = %q", out)
	}

	out, err = runCLI(t, "", "stego", "extract", stego)
	if err != nil {
		t.Fatalf("extract raw: %v", err)
	}
	if strings.TrimSpace(out) != "tlla ha uvvu" {
		t.Errorf("raw payload = %q", out)
	}

	out, err = runCLI(t, "", "stego", "extract", stego, "--algorithm", "caesar", "--param", "7")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if strings.TrimSpace(out) != "meet at noon" {
		t.Errorf("deciphered payload = %q", out)
	}
}

func TestCLI_Version(t *testing.T) {
	setHome(t)

	out, err := runCLI(t, "", "version", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"version"`) || !strings.Contains(out, `"goVersion"`) {
		t.Errorf("version json = %q", out)
	}
}
