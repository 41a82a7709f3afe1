// Command probe exercises the backend's upstream integrations from the
// command line: one-shot completions, speech transcription and synthesis,
// and contact submission validation. It talks to the upstream services
// directly, bypassing the HTTP layer.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hyrx/studio-backend/internal/config"
	"github.com/hyrx/studio-backend/internal/model/contact"
	"github.com/hyrx/studio-backend/internal/service/completion"
	contactService "github.com/hyrx/studio-backend/internal/service/contact"
	"github.com/hyrx/studio-backend/internal/speech"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] could not load .env, using system environment: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	mode := flag.String("mode", "", "probe mode: chat, transcribe, synthesize or contact")
	message := flag.String("message", "", "user message (chat mode)")
	audioPath := flag.String("audio", "", "input audio file path (transcribe mode)")
	text := flag.String("text", "", "input text (synthesize mode)")
	outputPath := flag.String("out", "", "output audio file path (synthesize mode, default probe-out.mp3)")
	voice := flag.String("voice", "", "voice name, empty picks from configured preferences")
	email := flag.String("email", "", "submitter email (contact mode)")
	name := flag.String("name", "", "submitter name (contact mode)")
	timeout := flag.Duration("timeout", 45*time.Second, "request timeout")

	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *mode {
	case "chat":
		runChat(ctx, cfg, *message)
	case "transcribe":
		runTranscribe(ctx, cfg, *audioPath)
	case "synthesize":
		runSynthesize(ctx, cfg, *text, *voice, *outputPath)
	case "contact":
		runContact(*name, *email, *message)
	default:
		flag.Usage()
		log.Fatal("specify -mode=chat, -mode=transcribe, -mode=synthesize or -mode=contact")
	}
}

func runChat(ctx context.Context, cfg *config.Config, message string) {
	if message == "" {
		log.Fatal("-message is required in chat mode")
	}
	if !cfg.AI.Enabled() {
		log.Fatal("Ark credentials not configured, set ARK_API_KEY and ARK_MODEL")
	}

	svc, err := completion.NewService(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("failed to initialize completion service: %v", err)
	}

	start := time.Now()
	reply, err := svc.Complete(ctx, nil, message)
	if err != nil {
		log.Fatalf("completion failed (%v): user-facing message would be %q", err, completion.UserMessage(err))
	}

	log.Printf("completion ok in %s", time.Since(start).Round(time.Millisecond))
	fmt.Println(reply)
}

func runTranscribe(ctx context.Context, cfg *config.Config, audioPath string) {
	engine := mustEngine(cfg)
	if audioPath == "" {
		log.Fatal("-audio is required in transcribe mode")
	}

	file, err := os.Open(audioPath)
	if err != nil {
		log.Fatalf("failed to open audio file: %v", err)
	}
	defer file.Close()

	format := strings.TrimPrefix(filepath.Ext(audioPath), ".")
	start := time.Now()
	transcript, err := engine.Transcribe(ctx, file, format)
	if err != nil {
		log.Fatalf("transcription failed: %v", err)
	}

	log.Printf("transcription ok in %s (confidence %.2f)", time.Since(start).Round(time.Millisecond), transcript.Confidence)
	fmt.Println(transcript.Text)
}

func runSynthesize(ctx context.Context, cfg *config.Config, text, voice, outputPath string) {
	engine := mustEngine(cfg)
	if text == "" {
		log.Fatal("-text is required in synthesize mode")
	}

	if voice == "" {
		voices, err := engine.Voices(ctx)
		if err != nil {
			log.Fatalf("failed to list voices: %v", err)
		}
		voice = speech.SelectVoice(voices, cfg.Speech.VoicePrefs)
		log.Printf("selected voice %q from %d available", voice, len(voices))
	}

	start := time.Now()
	audio, err := engine.Synthesize(ctx, text, voice)
	if err != nil {
		log.Fatalf("synthesis failed: %v", err)
	}

	if outputPath == "" {
		outputPath = "probe-out.mp3"
	}
	if err := os.WriteFile(outputPath, audio, 0o644); err != nil {
		log.Fatalf("failed to write output file: %v", err)
	}
	log.Printf("synthesis ok in %s, %d bytes written to %s", time.Since(start).Round(time.Millisecond), len(audio), outputPath)
}

// runContact checks a submission against the validation rules without
// touching the verifier, store or mailer.
func runContact(name, email, message string) {
	sub := contact.Submission{Name: name, Email: email, Message: message}
	if err := contactService.Validate(sub); err != nil {
		log.Fatalf("submission rejected: %v", err)
	}
	log.Println("submission passes validation")
}

func mustEngine(cfg *config.Config) *speech.Engine {
	capability := speech.Detect(cfg.Speech)
	if !capability.Supported() {
		log.Fatalf("speech unavailable: %s", capability.Reason())
	}
	return capability.Engine()
}
