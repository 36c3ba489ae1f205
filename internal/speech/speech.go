// Package speech synthesizes spoken greetings for recognized customers.
package speech

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const speechModel = openai.SpeechModelGPT4oMiniTTS

// Sink receives the synthesized MP3 audio. The front desk player watches the
// output directory, so the default sink just drops files there.
type Sink func(audio []byte) error

// Speaker turns greeting texts into audio via the OpenAI speech API.
type Speaker struct {
	client *openai.Client
	voice  openai.AudioSpeechNewParamsVoice
	sink   Sink
}

// NewSpeaker creates a speaker writing MP3 files into outDir.
func NewSpeaker(apiKey, outDir string) *Speaker {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Speaker{
		client: &client,
		voice:  openai.AudioSpeechNewParamsVoiceAlloy,
		sink:   fileSink(outDir),
	}
}

// NewSpeakerWithSink creates a speaker delivering audio to a custom sink.
func NewSpeakerWithSink(apiKey string, sink Sink) *Speaker {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Speaker{
		client: &client,
		voice:  openai.AudioSpeechNewParamsVoiceAlloy,
		sink:   sink,
	}
}

// Greet synthesizes a welcome-back message for the named customer and hands
// the audio to the sink.
func (s *Speaker) Greet(ctx context.Context, name string) error {
	text := fmt.Sprintf("Xin chào %s, chào mừng quý khách quay trở lại!", name)

	resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          speechModel,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return fmt.Errorf("speech synthesis failed: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading speech audio: %w", err)
	}

	return s.sink(audio)
}

func fileSink(dir string) Sink {
	return func(audio []byte) error {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("creating greeting directory: %w", err)
		}
		name := fmt.Sprintf("greeting-%d.mp3", time.Now().UnixNano())
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, audio, 0600); err != nil {
			return fmt.Errorf("writing greeting audio: %w", err)
		}
		return nil
	}
}
