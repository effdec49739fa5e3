package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cipherkit/internal/dispatch"
	"cipherkit/internal/stegano"
	"cipherkit/internal/storage"
)

var (
	stegoAlgorithm string
	stegoParam     string
	stegoChannels  string
	stegoOut       string
	stegoFile      string
)

var stegoCmd = &cobra.Command{
	Use:   "stego",
	Short: "Hide ciphertext in PNG or BMP images",
}

var stegoEmbedCmd = &cobra.Command{
	Use:   "embed <cover-image> [text...]",
	Short: "Encipher text and hide it in an image",
	Long: `Encipher text and hide it in the low bits of a cover image.

Without --algorithm the text is embedded as is.

Examples:
  cipherkit stego embed cover.png --out secret.png --algorithm caesar --param 7 meet at noon
  cipherkit stego embed cover.bmp --out secret.bmp --channels b --file note.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStegoEmbed,
}

var stegoExtractCmd = &cobra.Command{
	Use:   "extract <image>",
	Short: "Recover hidden text from an image and decipher it",
	Args:  cobra.ExactArgs(1),
	RunE:  runStegoExtract,
}

func init() {
	for _, c := range []*cobra.Command{stegoEmbedCmd, stegoExtractCmd} {
		c.Flags().StringVarP(&stegoAlgorithm, "algorithm", "a", "", "Cipher applied before embedding / after extracting")
		c.Flags().StringVarP(&stegoParam, "param", "p", "", "Cipher parameter")
		c.Flags().StringVar(&stegoChannels, "channels", "", "Colour channels carrying the payload (default from stegano.channels)")
	}
	stegoEmbedCmd.Flags().StringVarP(&stegoOut, "out", "o", "", "Output image path (required)")
	stegoEmbedCmd.Flags().StringVarP(&stegoFile, "file", "f", "", "Read the text from a file")
	_ = stegoEmbedCmd.MarkFlagRequired("out")

	stegoCmd.AddCommand(stegoEmbedCmd)
	stegoCmd.AddCommand(stegoExtractCmd)
	rootCmd.AddCommand(stegoCmd)
}

func stegoChannelSet() (stegano.Channels, error) {
	s := stegoChannels
	if s == "" {
		s = cfg.Stegano.Channels
	}
	return stegano.ParseChannels(s)
}

func runStegoEmbed(cmd *cobra.Command, args []string) error {
	channels, err := stegoChannelSet()
	if err != nil {
		return err
	}

	text, err := readText(cmd, args[1:], stegoFile)
	if err != nil {
		return err
	}

	payload := text
	if stegoAlgorithm != "" {
		res, err := newDispatcher(storage.SourceCLI).Execute(newContext(), dispatch.Request{
			Operation: string(dispatch.OpCipher),
			Algorithm: stegoAlgorithm,
			Param:     stegoParam,
			Text:      text,
		})
		if err != nil {
			return err
		}
		payload = res.Output
		if res.Alphabet != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Alphabet: %s\n", res.Alphabet)
		}
	}
	if payload == "" {
		return fmt.Errorf("nothing to embed")
	}

	cover, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read cover: %w", err)
	}
	stego, err := stegano.Embed(cover, []byte(payload), channels)
	if err != nil {
		return err
	}
	if err := os.WriteFile(stegoOut, stego, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", stegoOut, err)
	}

	logger.Info("Payload embedded", "image", stegoOut, "bytes", len(payload), "channels", channels.String())
	return writeOutput(cmd.OutOrStdout(), &StegoResponseCLI{
		Image:     stegoOut,
		Channels:  channels.String(),
		Algorithm: stegoAlgorithm,
		Bytes:     len(payload),
	})
}

func runStegoExtract(cmd *cobra.Command, args []string) error {
	channels, err := stegoChannelSet()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	payload, err := stegano.Extract(data, channels)
	if err != nil {
		return err
	}

	if stegoAlgorithm == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), string(payload))
		return err
	}

	res, err := newDispatcher(storage.SourceCLI).Execute(newContext(), dispatch.Request{
		Operation: string(dispatch.OpDecipher),
		Algorithm: stegoAlgorithm,
		Param:     stegoParam,
		Text:      string(payload),
	})
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), res)
}
