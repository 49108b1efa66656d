package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/captchakit/captcha-ocr/internal/crnn"
	"github.com/captchakit/captcha-ocr/internal/inspect"
	"github.com/captchakit/captcha-ocr/internal/preprocess"
	"github.com/captchakit/captcha-ocr/internal/recognizer"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and --help before flag parsing
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("captcha-ocr %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		}
	}

	var (
		imagePath   = flag.String("image", os.Getenv("CAPTCHA_IMAGE_PATH"), "path to the CAPTCHA image (png, jpeg or gif)")
		weightsPath = flag.String("weights", os.Getenv("CRNN_WEIGHTS_PATH"), "path to the CRNN weights checkpoint")
		backendList = flag.String("backends", "local", "comma-separated backends to run: local, tesseract, openrouter")
		adaptive    = flag.Bool("adaptive", false, "use adaptive mean thresholding instead of Otsu")
		debugDir    = flag.String("debug-dir", "", "write per-stage PNGs and the box overlay into this directory")
	)
	flag.Parse()

	// Results go to stdout, everything else to stderr
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if *imagePath == "" {
		log.Fatal("no image given: use -image or CAPTCHA_IMAGE_PATH")
	}

	data, err := os.ReadFile(*imagePath)
	if err != nil {
		log.Fatalf("Failed to read image: %v", err)
	}

	opts := preprocess.Options{}
	if *adaptive {
		opts.Binarize = preprocess.Adaptive
	}

	alphabet := crnn.DefaultAlphabet()
	backends, err := buildBackends(*backendList, *weightsPath, alphabet, opts)
	if err != nil {
		log.Fatalf("Failed to configure backends: %v", err)
	}

	ctx := context.Background()
	var results []*recognizer.Result
	for _, b := range backends {
		res, err := b.Infer(ctx, data)
		if err != nil {
			log.Printf("Backend %s failed, skipping: %v", b.Name(), err)
			continue
		}
		log.Printf("Backend %s: %q (confidence %.3f)", b.Name(), res.Text, res.Confidence)
		results = append(results, res)
	}

	best := recognizer.ChooseBest(results)

	if *debugDir != "" {
		if err := dumpArtifacts(*debugDir, data, opts); err != nil {
			log.Printf("Failed to write debug artifacts: %v", err)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(best); err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
}

// buildBackends instantiates the requested backends in the order given. The
// local backend needs a weights file; openrouter needs OPENROUTER_API_KEY.
func buildBackends(list, weightsPath string, alphabet *crnn.Alphabet, opts preprocess.Options) ([]recognizer.ImageToTextRecognizer, error) {
	var backends []recognizer.ImageToTextRecognizer
	for _, name := range strings.Split(list, ",") {
		switch strings.TrimSpace(name) {
		case "local":
			if weightsPath == "" {
				return nil, fmt.Errorf("local backend requires -weights or CRNN_WEIGHTS_PATH")
			}
			model, err := crnn.LoadModel(weightsPath, alphabet)
			if err != nil {
				return nil, fmt.Errorf("failed to load model: %w", err)
			}
			backends = append(backends, recognizer.NewLocalWithOptions(model, opts))
		case "tesseract":
			backends = append(backends, recognizer.NewTesseract(alphabet))
		case "openrouter":
			key := os.Getenv("OPENROUTER_API_KEY")
			if key == "" {
				return nil, fmt.Errorf("openrouter backend requires OPENROUTER_API_KEY")
			}
			backends = append(backends, recognizer.NewOpenRouter(key, os.Getenv("OPENROUTER_MODEL")))
		case "":
			// Tolerate stray commas
		default:
			return nil, fmt.Errorf("unknown backend %q", name)
		}
	}
	if len(backends) == 0 {
		return nil, fmt.Errorf("no backends selected")
	}
	return backends, nil
}

// dumpArtifacts reruns the preprocessing pipeline on the raw image and writes
// every stage into dir.
func dumpArtifacts(dir string, data []byte, opts preprocess.Options) error {
	img, err := preprocess.DecodeImage(data)
	if err != nil {
		return err
	}
	art, err := preprocess.Run(img, opts)
	if err != nil {
		return err
	}
	files, err := inspect.DumpStages(dir, art)
	if err != nil {
		return err
	}
	log.Printf("Wrote %d debug images to %s", len(files), dir)
	return nil
}

func printUsage() {
	fmt.Println("captcha-ocr - CAPTCHA image to text recognition")
	fmt.Println()
	fmt.Println("Usage: captcha-ocr -image <path> [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -image <path>      CAPTCHA image to recognize (png, jpeg or gif)")
	fmt.Println("  -weights <path>    CRNN weights checkpoint (required for the local backend)")
	fmt.Println("  -backends <list>   comma-separated: local, tesseract, openrouter (default: local)")
	fmt.Println("  -adaptive          use adaptive mean thresholding instead of Otsu")
	fmt.Println("  -debug-dir <path>  write per-stage PNGs and the box overlay here")
	fmt.Println("  --version, -v      Print version information")
	fmt.Println("  --help, -h         Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  CAPTCHA_IMAGE_PATH    default for -image")
	fmt.Println("  CRNN_WEIGHTS_PATH     default for -weights")
	fmt.Println("  OPENROUTER_API_KEY    API key for the openrouter backend")
	fmt.Println("  OPENROUTER_MODEL      model slug for the openrouter backend")
	fmt.Println()
	fmt.Println("The best result across all backends is printed as JSON on stdout.")
}
