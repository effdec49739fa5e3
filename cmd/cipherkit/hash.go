package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cipherkit/internal/errors"
	"cipherkit/internal/hashing"
	"cipherkit/internal/input"
)

var (
	hashFile       string
	hashAlgorithms []string
	hashList       bool
)

var hashCmd = &cobra.Command{
	Use:   "hash [text...]",
	Short: "Compute message digests",
	Long: `Compute message digests of text or a file.

Text is hashed with every supported algorithm unless --algorithm is
given. Files are streamed once through the algorithms in
hash.file_algorithms (default md5 and sha256).

Examples:
  cipherkit hash hello
  cipherkit hash --algorithm sha3_256 --algorithm blake2b hello
  cipherkit hash --file backup.tar.zst
  cipherkit hash --list`,
	RunE: runHash,
}

func init() {
	hashCmd.Flags().StringVarP(&hashFile, "file", "f", "", "Hash a file (gzip and zstd are decompressed)")
	hashCmd.Flags().StringSliceVarP(&hashAlgorithms, "algorithm", "a", nil, "Digest to compute (repeatable)")
	hashCmd.Flags().BoolVar(&hashList, "list", false, "List supported digests")
	rootCmd.AddCommand(hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if hashList {
		for _, name := range hashing.Algorithms {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	algos, err := hashSelection(hashAlgorithms)
	if err != nil {
		return err
	}

	var resp *HashResponseCLI
	switch {
	case hashFile != "":
		if len(algos) == 0 {
			algos = cfg.Hash.FileAlgorithms
		}
		resp, err = hashPath(hashFile, algos, cfg.Hash.ChunkSize)
	case len(args) > 0:
		resp, err = hashString(strings.Join(args, " "), algos)
	default:
		text, rerr := readText(cmd, nil, "")
		if rerr != nil {
			return rerr
		}
		resp, err = hashString(text, algos)
	}
	if err != nil {
		return err
	}

	logger.Debug("Hashed input", "source", resp.Source, "digests", len(resp.Digests))
	return writeOutput(out, resp)
}

func hashSelection(names []string) ([]string, error) {
	algos := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if !hashing.Supported(name) {
			return nil, errors.Newf(errors.UnsupportedHash, "hash algorithm '%s' not supported", name).
				WithDetails(map[string]interface{}{"available": hashing.Algorithms})
		}
		algos = append(algos, name)
	}
	return algos, nil
}

func hashString(text string, algos []string) (*HashResponseCLI, error) {
	if text == "" {
		return nil, errors.Newf(errors.EmptyInput, "please provide text to hash")
	}

	resp := &HashResponseCLI{Source: "text"}
	if len(algos) == 0 {
		resp.Digests = hashing.StringDigests(text)
		return resp, nil
	}

	digests, err := hashing.ReaderDigests(strings.NewReader(text), algos, 0)
	if err != nil {
		return nil, err
	}
	resp.Digests = digests
	return resp, nil
}

func hashPath(path string, algos []string, chunkSize int) (*HashResponseCLI, error) {
	f, err := input.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	digests, err := hashing.ReaderDigests(f, algos, chunkSize)
	if err != nil {
		return nil, err
	}

	source := path
	if f.Compression != input.None {
		source = fmt.Sprintf("%s (%s-decompressed)", path, f.Compression)
	}
	return &HashResponseCLI{Source: source, Digests: digests}, nil
}
