package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/example/scriptcast/internal/tts"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var topic string
	var text string
	var voice string
	var out string
	var fadeInMS float64
	var fadeOutMS float64

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate spoken WAV audio from a topic or pre-written text",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			inputText, err := readGenerateText(topic, text, os.Stdin)
			if err != nil {
				return err
			}

			selectedVoice := cfg.TTS.Voice
			if voice != "" {
				selectedVoice = voice
			}
			if !cmd.Flags().Changed("fade-in-ms") {
				fadeInMS = cfg.Audio.FadeInMS
			}
			if !cmd.Flags().Changed("fade-out-ms") {
				fadeOutMS = cfg.Audio.FadeOutMS
			}

			svc, err := buildPipeline(cfg)
			if err != nil {
				return err
			}

			result, err := svc.Generate(cmd.Context(), tts.GenerateRequest{
				Topic:     topic,
				Text:      inputText,
				Voice:     selectedVoice,
				FadeInMS:  fadeInMS,
				FadeOutMS: fadeOutMS,
			})
			if err != nil {
				return err
			}

			slog.Info("audio generated",
				slog.Int("transcript_len", len(result.Transcript)),
				slog.Int64("audio_ms", result.Duration.Milliseconds()),
				slog.Int("wav_bytes", len(result.WAV)),
			)

			return writeGenerateOutput(out, result.WAV, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "Topic to expand into a script before synthesis")
	cmd.Flags().StringVar(&text, "text", "", "Pre-written text to speak (if empty and no topic, read from stdin)")
	cmd.Flags().StringVar(&voice, "voice", "", "Voice passed to the speech service")
	cmd.Flags().StringVar(&out, "out", "out.wav", "Output WAV path ('-' for stdout)")
	cmd.Flags().Float64Var(&fadeInMS, "fade-in-ms", 0, "Fade-in ramp in milliseconds")
	cmd.Flags().Float64Var(&fadeOutMS, "fade-out-ms", 0, "Fade-out ramp in milliseconds")

	return cmd
}

// readGenerateText resolves the text input: an explicit --text wins, a
// --topic leaves text empty for the script generator, otherwise stdin is
// consumed.
func readGenerateText(topic, text string, stdin io.Reader) (string, error) {
	if text != "" {
		return text, nil
	}
	if topic != "" {
		return "", nil
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read text from stdin: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return "", fmt.Errorf("no topic or text given and stdin is empty")
	}

	return trimmed, nil
}

func writeGenerateOutput(path string, wav []byte, stdout io.Writer) error {
	if path == "-" {
		_, err := stdout.Write(wav)
		return err
	}

	if err := os.WriteFile(path, wav, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}
