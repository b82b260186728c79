// Command flow runs the semantic communication pipeline once from the
// terminal: LLM condensation, noisy BPSK transmission, LLM reconstruction
// and an optional similarity score.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/exp/rand"

	"github.com/jeongseonghan/semcom/internal/config"
	"github.com/jeongseonghan/semcom/internal/link"
	"github.com/jeongseonghan/semcom/internal/llm"
	"github.com/jeongseonghan/semcom/internal/semantic"
)

const defaultText = "This is a test message for semantic communication."

var (
	header = color.New(color.FgCyan, color.Bold)
	step   = color.New(color.FgYellow, color.Bold)
	value  = color.New(color.FgGreen)
)

func printHeader(title string) {
	line := strings.Repeat("=", 70)
	header.Println(line)
	header.Println(center(title, 70))
	header.Println(line)
}

func printStep(n int, title string) {
	fmt.Println()
	step.Printf("[STEP %d] %s\n", n, title)
	fmt.Println(strings.Repeat("-", 70))
}

func printResult(label, v string) {
	fmt.Printf("%s: ", label)
	value.Println(v)
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	ebn0 := flag.Float64("ebno", 5.0, "Eb/N0 in dB")
	seed := flag.Uint64("seed", 0, "Noise seed (0 uses current time)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	text := strings.Join(flag.Args(), " ")
	if text == "" {
		fmt.Print("Enter text to process (or press Enter for default): ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		text = strings.TrimSpace(line)
	}
	if text == "" {
		text = defaultText
		fmt.Printf("Using default text: %q\n", defaultText)
	}

	src := rand.NewSource(uint64(time.Now().UnixNano()))
	if *seed != 0 {
		src = rand.NewSource(*seed)
	}

	codec, err := cfg.Codec()
	if err != nil {
		log.Fatalf("Failed to build codec: %v", err)
	}
	l := link.New(codec)
	llmClient := llm.NewClient(cfg.OpenAIKey, cfg.GeminiKey)
	ctx := context.Background()

	printHeader("SEMANTIC COMMUNICATION FLOW")
	fmt.Printf("\nLLM provider: %s\n", llmClient.Provider())
	fmt.Printf("BPSK Eb/N0 setting: %.1f dB\n", *ebn0)

	printStep(1, "User Input")
	printResult("Input Text", fmt.Sprintf("%q", text))

	printStep(2, "LLM Processing")
	processed, err := llmClient.Process(ctx, text)
	if err != nil {
		log.Fatalf("LLM processing failed: %v", err)
	}
	printResult("LLM Output", fmt.Sprintf("%q", processed))

	printStep(3, "BPSK Noise Addition")
	res := l.Transmit(processed, *ebn0, src)
	printResult("Bit Error Rate",
		fmt.Sprintf("%.6f (%d errors in %d bits)", res.BER, res.ErrorBits(), res.BitCount()))
	printResult("Noisy Text", fmt.Sprintf("%q", res.Text))

	printStep(4, "LLM Reconstruction")
	reconstructed, err := llmClient.Reconstruct(ctx, res.Text)
	if err != nil {
		log.Fatalf("LLM reconstruction failed: %v", err)
	}
	printResult("Reconstructed Text", fmt.Sprintf("%q", reconstructed))

	similarity := -1.0
	if cfg.EmbedderURL != "" {
		printStep(5, "Calculate Similarity")
		scorer := semantic.NewScorer(semantic.NewHTTPEmbedder(cfg.EmbedderURL))
		score, err := scorer.Similarity(ctx, text, reconstructed)
		if err != nil {
			log.Printf("Similarity scoring failed: %v", err)
		} else {
			similarity = score
			printResult("Similarity Score", fmt.Sprintf("%.5f", score))
		}
	}

	fmt.Println()
	printHeader("RESULTS SUMMARY")
	fmt.Printf("Original Input:     %q\n", text)
	fmt.Printf("LLM Processed:      %q\n", processed)
	fmt.Printf("After BPSK Noise:   %q\n", res.Text)
	fmt.Printf("LLM Reconstructed:  %q\n", reconstructed)
	if similarity >= 0 {
		fmt.Printf("Similarity Score:    %.5f\n", similarity)
	}
	fmt.Println(strings.Repeat("=", 70))
}
