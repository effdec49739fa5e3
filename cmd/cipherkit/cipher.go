package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cipherkit/internal/dispatch"
	"cipherkit/internal/input"
	"cipherkit/internal/storage"
)

var (
	cipherParam string
	cipherFile  string
)

var cipherCmd = &cobra.Command{
	Use:     "cipher <algorithm> [text...]",
	Aliases: []string{"encrypt"},
	Short:   "Encipher text",
	Long: `Encipher text with a registered algorithm.

The text comes from the remaining arguments, --file (gzip and zstd
files are decompressed), or standard input.

Examples:
  cipherkit cipher atbash Hello, World!
  cipherkit encrypt caesar --param 5 hello
  cipherkit cipher columnar --param ZEBRA --file message.txt.gz
  echo hello | cipherkit cipher rot13`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCipherOp(cmd, args, dispatch.OpCipher)
	},
}

var decipherCmd = &cobra.Command{
	Use:     "decipher <algorithm> [text...]",
	Aliases: []string{"decrypt"},
	Short:   "Decipher text",
	Long: `Decipher text with a registered algorithm.

Examples:
  cipherkit decipher atbash Svool, Dliow!
  cipherkit decrypt rail_fence --param 3 WECRLTEERDSOEEFEAOCAIVDEN`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCipherOp(cmd, args, dispatch.OpDecipher)
	},
}

func init() {
	for _, c := range []*cobra.Command{cipherCmd, decipherCmd} {
		c.Flags().StringVarP(&cipherParam, "param", "p", "", "Key, keyword, shift, rails, columns, alphabet or Bacon variant")
		c.Flags().StringVarP(&cipherFile, "file", "f", "", "Read the text from a file")
		rootCmd.AddCommand(c)
	}
}

func runCipherOp(cmd *cobra.Command, args []string, op dispatch.Operation) error {
	text, err := readText(cmd, args[1:], cipherFile)
	if err != nil {
		return err
	}

	d := newDispatcher(storage.SourceCLI)
	res, err := d.Execute(newContext(), dispatch.Request{
		Operation: string(op),
		Algorithm: args[0],
		Param:     cipherParam,
		Text:      text,
	})
	if err != nil {
		return err
	}

	if res.Alphabet != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Alphabet: %s\n", res.Alphabet)
	}
	return writeOutput(cmd.OutOrStdout(), res)
}

// readText takes the text from args, then --file, then piped stdin.
func readText(cmd *cobra.Command, args []string, file string) (string, error) {
	if len(args) > 0 {
		if file != "" {
			return "", fmt.Errorf("give the text as arguments or --file, not both")
		}
		return strings.Join(args, " "), nil
	}
	if file != "" {
		return input.ReadText(file)
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		return "", nil
	}
	wrapped, err := input.Wrap(in)
	if err != nil {
		return "", err
	}
	defer func() { _ = wrapped.Close() }()

	data, err := io.ReadAll(io.LimitReader(wrapped, input.MaxTextSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(data) > input.MaxTextSize {
		return "", fmt.Errorf("input exceeds %d bytes", input.MaxTextSize)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
