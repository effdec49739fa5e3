package dispatch

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"cipherkit/internal/config"
	"cipherkit/internal/errors"
	"cipherkit/internal/storage"
)

type memRecorder struct {
	mu      sync.Mutex
	entries []storage.Entry
}

func (m *memRecorder) Record(_ context.Context, e storage.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func TestParseOperation(t *testing.T) {
	tests := []struct {
		in      string
		want    Operation
		wantErr bool
	}{
		{"cipher", OpCipher, false},
		{"ENCRYPT", OpCipher, false},
		{"decipher", OpDecipher, false},
		{" decrypt ", OpDecipher, false},
		{"encode", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOperation(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOperation(%q) error = %v", tt.in, err)
			}
			if err != nil && errors.CodeOf(err) != errors.InvalidOperation {
				t.Errorf("code = %v, want INVALID_OPERATION", errors.CodeOf(err))
			}
			if got != tt.want {
				t.Errorf("ParseOperation(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in       string
		wantName string
		wantArgs []string
		wantErr  bool
	}{
		{"/cipher atbash hello world", "cipher", []string{"atbash", "hello", "world"}, false},
		{"/Encrypt@CipherBot caesar   hi", "encrypt", []string{"caesar", "hi"}, false},
		{"  /help", "help", []string{}, false},
		{"hello there", "", nil, true},
		{"/", "", nil, true},
		{"", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cmd, err := ParseCommand(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCommand(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if cmd.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", cmd.Name, tt.wantName)
			}
			if strings.Join(cmd.Args, "|") != strings.Join(tt.wantArgs, "|") {
				t.Errorf("Args = %q, want %q", cmd.Args, tt.wantArgs)
			}
		})
	}
}

func TestRequestFromCommand(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		msg      string
		want     Request
		wantCode errors.ErrorCode
	}{
		{"/cipher atbash hello world", Request{Operation: "cipher", Algorithm: "atbash", Text: "hello world"}, ""},
		{"/cipher ATBASH 5 x", Request{Operation: "cipher", Algorithm: "atbash", Text: "5 x"}, ""},
		{"/encrypt caesar 5 hello", Request{Operation: "encrypt", Algorithm: "caesar", Param: "5", Text: "hello"}, ""},
		{"/encrypt caesar 5", Request{Operation: "encrypt", Algorithm: "caesar", Text: "5"}, ""},
		{"/encrypt caesar five hello", Request{Operation: "encrypt", Algorithm: "caesar", Text: "five hello"}, ""},
		{"/encrypt mixed_alphabet mykey secret text", Request{Operation: "encrypt", Algorithm: "mixed_alphabet", Param: "mykey", Text: "secret text"}, ""},
		{"/encrypt baconian old hi", Request{Operation: "encrypt", Algorithm: "baconian", Param: "old", Text: "hi"}, ""},
		{"/encrypt baconian hello hi", Request{Operation: "encrypt", Algorithm: "baconian", Text: "hello hi"}, ""},
		{
			"/cipher simple_substitution zyxwvutsrqponmlkjihgfedcba hi",
			Request{Operation: "cipher", Algorithm: "simple_substitution", Param: "zyxwvutsrqponmlkjihgfedcba", Text: "hi"}, "",
		},
		{"/cipher simple_substitution hello there", Request{Operation: "cipher", Algorithm: "simple_substitution", Text: "hello there"}, ""},
		{"/decrypt columnar ZEBRA ODLREOLLHW", Request{Operation: "decrypt", Algorithm: "columnar", Param: "ZEBRA", Text: "ODLREOLLHW"}, ""},
		{"/encrypt mixed_alphabet hello", Request{}, errors.MissingParameter},
		{"/encrypt shift hello", Request{}, errors.MissingParameter},
		{"/cipher atbash", Request{}, errors.MissingParameter},
		{"/cipher vigenere key text", Request{}, errors.UnsupportedAlgorithm},
		{"/hash text", Request{}, errors.InvalidOperation},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			cmd, err := ParseCommand(tt.msg)
			if err != nil {
				t.Fatalf("ParseCommand() error = %v", err)
			}

			got, err := RequestFromCommand(reg, cmd)
			if tt.wantCode != "" {
				if code := errors.CodeOf(err); code != tt.wantCode {
					t.Fatalf("code = %v, want %v (err %v)", code, tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("RequestFromCommand() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("RequestFromCommand() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	want := []string{
		"atbash", "baconian", "caesar", "columnar", "mixed_alphabet", "polybius",
		"rail_fence", "rot13", "scytale", "shift", "simple_substitution",
	}
	if got := reg.Names(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	if _, ok := reg.Lookup("  Rail_Fence "); !ok {
		t.Error("Lookup should be case-insensitive and trim spaces")
	}
	if _, ok := reg.Lookup("enigma"); ok {
		t.Error("Lookup(enigma) should fail")
	}

	all := reg.All()
	if len(all) != len(want) {
		t.Fatalf("len(All()) = %d", len(all))
	}
	if all[0].Family != FamilySubstitution || all[len(all)-1].Family != FamilyTransposition {
		t.Errorf("All() not ordered by family: first %s, last %s", all[0].Family, all[len(all)-1].Family)
	}

	mixed, _ := reg.Lookup("mixed_alphabet")
	if !mixed.Param.Required() {
		t.Error("mixed_alphabet keyword should be required")
	}
	if got := mixed.Usage(); got != "mixed_alphabet keyword" {
		t.Errorf("Usage() = %q", got)
	}
	caesar, _ := reg.Lookup("caesar")
	if caesar.Param.Required() {
		t.Error("caesar shift should be optional")
	}
}

func TestExecute(t *testing.T) {
	d := New(nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  Request
		want string
	}{
		{"atbash", Request{"cipher", "atbash", "", "Hello, World!"}, "Svool, Dliow!"},
		{"atbash ignores param", Request{"cipher", "atbash", "xyz", "abc"}, "zyx"},
		{"caesar default", Request{"encrypt", "caesar", "", "abc xyz"}, "def abc"},
		{"caesar 29", Request{"cipher", "caesar", "29", "a"}, "d"},
		{"caesar decrypt", Request{"decrypt", "Caesar", "5", "mjqqt"}, "hello"},
		{"rot13", Request{"cipher", "rot13", "", "Hello"}, "Uryyb"},
		{"rot13 custom", Request{"cipher", "rot13", "1", "abc"}, "bcd"},
		{"shift negative", Request{"cipher", "shift", "-1", "abc"}, "zab"},
		{"mixed", Request{"cipher", "mixed_alphabet", "secret", "hello"}, "dtiil"},
		{"mixed decipher", Request{"decipher", "mixed_alphabet", "secret", "dtiil"}, "hello"},
		{"simple", Request{"cipher", "simple_substitution", "zyxwvutsrqponmlkjihgfedcba", "hi"}, "sr"},
		{"baconian", Request{"cipher", "baconian", "", "Hi"}, "AABBBabaaa"},
		{"baconian old", Request{"cipher", "baconian", "old", "IJ"}, "ABAAAABAAA"},
		{"baconian old decipher", Request{"decipher", "baconian", "old", "ABAAAABAAA"}, "II"},
		{"polybius drops digits", Request{"cipher", "polybius", "", "hello 2024"}, "1204212124 "},
		{"columnar", Request{"cipher", "columnar", "ZEBRA", "HELLOWORLD"}, "ODLREOLLHW"},
		{"columnar decipher", Request{"decipher", "columnar", "zebra", "ODLREOLLHW"}, "HELLOWORLD"},
		{"scytale", Request{"cipher", "scytale", "", "HELLOWORLDXY"}, "HLODEORXLWLY"},
		{"rail fence", Request{"cipher", "rail_fence", "", "WEAREDISCOVEREDFLEEATONCE"}, "WECRLTEERDSOEEFEAOCAIVDEN"},
		{"rail fence decipher", Request{"decipher", "rail_fence", "3", "WECRLTEERDSOEEFEAOCAIVDEN"}, "WEAREDISCOVEREDFLEEATONCE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := d.Execute(ctx, tt.req)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if res.Output != tt.want {
				t.Errorf("Output = %q, want %q", res.Output, tt.want)
			}
		})
	}
}

func TestExecute_Errors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Defaults.MaxInputBytes = 16
	d := New(cfg)
	ctx := context.Background()

	tests := []struct {
		name string
		req  Request
		want errors.ErrorCode
	}{
		{"bad operation", Request{"encode", "atbash", "", "abc"}, errors.InvalidOperation},
		{"unknown algorithm", Request{"cipher", "enigma", "", "abc"}, errors.UnsupportedAlgorithm},
		{"missing keyword", Request{"cipher", "mixed_alphabet", " ", "abc"}, errors.MissingParameter},
		{"missing columnar key", Request{"cipher", "columnar", "", "abc"}, errors.MissingParameter},
		{"missing shift", Request{"cipher", "shift", "", "abc"}, errors.MissingParameter},
		{"blank text", Request{"cipher", "atbash", "", "  \n\t"}, errors.EmptyInput},
		{"too large", Request{"cipher", "atbash", "", strings.Repeat("a", 17)}, errors.InputTooLarge},
		{"bad shift", Request{"cipher", "caesar", "three", "abc"}, errors.InvalidParameter},
		{"bad alphabet", Request{"cipher", "simple_substitution", "abc", "abc"}, errors.InvalidParameter},
		{"bad variant", Request{"cipher", "baconian", "latin", "abc"}, errors.InvalidParameter},
		{"one rail", Request{"cipher", "rail_fence", "1", "abc"}, errors.InvalidParameter},
		{"zero columns", Request{"cipher", "scytale", "0", "abc"}, errors.InvalidParameter},
		{"scytale guard", Request{"cipher", "scytale", "10", "short"}, errors.InvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Execute(ctx, tt.req)
			if err == nil {
				t.Fatal("Execute() error = nil")
			}
			if code := errors.CodeOf(err); code != tt.want {
				t.Errorf("code = %v, want %v (err %v)", code, tt.want, err)
			}
		})
	}
}

func TestExecute_RandomAlphabet(t *testing.T) {
	d := New(nil, WithRand(rand.New(rand.NewPCG(1, 2))))
	ctx := context.Background()

	res, err := d.Execute(ctx, Request{Operation: "cipher", Algorithm: "simple_substitution", Text: "Attack at Dawn!"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(res.Alphabet) != 26 {
		t.Fatalf("Alphabet = %q, want 26 letters", res.Alphabet)
	}

	back, err := d.Execute(ctx, Request{Operation: "decipher", Algorithm: "simple_substitution", Param: res.Alphabet, Text: res.Output})
	if err != nil {
		t.Fatalf("decipher error = %v", err)
	}
	if back.Output != "Attack at Dawn!" {
		t.Errorf("round trip = %q", back.Output)
	}
	if back.Alphabet != "" {
		t.Error("Alphabet should only be reported when generated")
	}
}

func TestExecute_MixedAlphabetWarning(t *testing.T) {
	d := New(nil)

	res, err := d.Execute(context.Background(), Request{Operation: "cipher", Algorithm: "mixed_alphabet", Param: "SECRET", Text: "hello"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Output != "cTggj" {
		t.Errorf("Output = %q, want cTggj", res.Output)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("Warnings = %v, want one", res.Warnings)
	}

	res, err = d.Execute(context.Background(), Request{Operation: "cipher", Algorithm: "mixed_alphabet", Param: "secret", Text: "hello"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("lowercase keyword should not warn: %v", res.Warnings)
	}
}

func TestExecute_NormalizesText(t *testing.T) {
	d := New(nil)

	res, err := d.Execute(context.Background(), Request{Operation: "cipher", Algorithm: "atbash", Text: "cafe\u0301"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Input != "caf\u00e9" {
		t.Errorf("Input = %q, want NFC form", res.Input)
	}
	if res.Output != "xzu\u00e9" {
		t.Errorf("Output = %q", res.Output)
	}
}

func TestExecute_Defaults(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Defaults.CaesarShift = 1
	cfg.Defaults.BaconVariant = "old"
	cfg.Defaults.Rails = 2
	d := New(cfg)
	ctx := context.Background()

	res, err := d.Execute(ctx, Request{Operation: "cipher", Algorithm: "caesar", Text: "abc"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Output != "bcd" {
		t.Errorf("caesar with default 1 = %q, want bcd", res.Output)
	}

	res, err = d.Execute(ctx, Request{Operation: "decipher", Algorithm: "baconian", Text: "BAABB"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Output != "U" {
		t.Errorf("old baconian default = %q, want U", res.Output)
	}

	res, err = d.Execute(ctx, Request{Operation: "cipher", Algorithm: "rail_fence", Text: "ABCDEF"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Output != "ACEBDF" {
		t.Errorf("rail fence with 2 rails = %q, want ACEBDF", res.Output)
	}
}

func TestExecute_RecordsHistory(t *testing.T) {
	rec := &memRecorder{}
	d := New(nil, WithRecorder(rec), WithSource(storage.SourceChat))
	ctx := context.Background()

	if _, err := d.Execute(ctx, Request{Operation: "encrypt", Algorithm: "atbash", Text: "secret"}); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Execute(ctx, Request{Operation: "cipher", Algorithm: "scytale", Param: "10", Text: "short"}); err == nil {
		t.Fatal("scytale guard should fail")
	}
	// Validation failures before a cipher runs are not journaled.
	if _, err := d.Execute(ctx, Request{Operation: "cipher", Algorithm: "enigma", Text: "x"}); err == nil {
		t.Fatal("unknown algorithm should fail")
	}

	if len(rec.entries) != 2 {
		t.Fatalf("recorded %d entries, want 2", len(rec.entries))
	}

	ok, failed := rec.entries[0], rec.entries[1]
	if ok.Algorithm != "atbash" || ok.Operation != "cipher" || ok.Source != storage.SourceChat {
		t.Errorf("entry = %+v", ok)
	}
	if ok.InputLen != 6 || ok.OutputLen != 6 || ok.ErrorCode != "" {
		t.Errorf("entry sizes = %+v", ok)
	}
	if failed.ErrorCode != string(errors.InvalidParameter) {
		t.Errorf("ErrorCode = %q, want INVALID_PARAMETER", failed.ErrorCode)
	}
	for _, e := range rec.entries {
		if strings.Contains(e.InputSHA256, "secret") {
			t.Error("entries must not contain plaintext")
		}
	}
}

func TestHandle(t *testing.T) {
	d := New(nil)
	ctx := context.Background()

	tests := []struct {
		msg      string
		contains []string
		excludes []string
	}{
		{"/cipher atbash hello world", []string{"<b>Algorithm:</b> ATBASH", "<b>Operation:</b> CIPHER", "<code>svool dliow</code>"}, []string{"Key:"}},
		{"/encrypt mixed_alphabet secret hello", []string{"<b>Key:</b> <code>secret</code>", "<code>dtiil</code>"}, nil},
		{"/encrypt caesar 5 <b>hi</b>", []string{"&lt;b&gt;hi&lt;/b&gt;", "&lt;g&gt;mn&lt;/g&gt;"}, nil},
		{"/cipher vigenere key text", []string{"❌ Algorithm 'vigenere' not supported", "Available: atbash, baconian"}, nil},
		{"/encrypt mixed_alphabet hello", []string{"❌ Mixed_alphabet requires keyword!", "Usage: /encrypt mixed_alphabet"}, nil},
		{"/cipher atbash", []string{"❌ Missing algorithm or text!", "Usage: /cipher &lt;algorithm&gt;"}, nil},
		{"/cipher scytale 10 short", []string{"❌ Error during cipher:", "less than half"}, nil},
		{"/hash hello", []string{"<b>MD5</b>: <code>5d41402abc4b2a76b9719d911017c592</code>", "<b>BLAKE2S</b>"}, nil},
		{"/hash", []string{"❌ Please provide text to hash!"}, nil},
		{"/help", []string{"/hash &lt;text&gt;", "rail_fence [number]", "mixed_alphabet keyword"}, nil},
		{"/start", []string{"Bot started successfully"}, nil},
		{"/frobnicate x", []string{"❌ Unknown command /frobnicate"}, nil},
		{"just chatting", []string{"/help"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			reply := d.Handle(ctx, tt.msg)
			for _, want := range tt.contains {
				if !strings.Contains(reply, want) {
					t.Errorf("reply missing %q:\n%s", want, reply)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(reply, bad) {
					t.Errorf("reply should not contain %q:\n%s", bad, reply)
				}
			}
		})
	}
}

func TestHandle_RandomAlphabetShown(t *testing.T) {
	d := New(nil, WithRand(rand.New(rand.NewPCG(7, 7))))

	reply := d.Handle(context.Background(), "/cipher simple_substitution hello there")
	if !strings.Contains(reply, "<b>Alphabet:</b>") {
		t.Errorf("generated alphabet should be reported:\n%s", reply)
	}
}
