package app

import (
	"fmt"

	"github.com/fairyhunter13/cv-autofill/internal/adapter/observability"
	"github.com/fairyhunter13/cv-autofill/internal/adapter/textextractor/docx"
	"github.com/fairyhunter13/cv-autofill/internal/adapter/textextractor/pdflayer"
	"github.com/fairyhunter13/cv-autofill/internal/adapter/textextractor/poppler"
	"github.com/fairyhunter13/cv-autofill/internal/adapter/textextractor/tesseract"
	"github.com/fairyhunter13/cv-autofill/internal/config"
	"github.com/fairyhunter13/cv-autofill/internal/domain"
	"github.com/fairyhunter13/cv-autofill/internal/heuristics"
	"github.com/fairyhunter13/cv-autofill/internal/usecase"
	"github.com/fairyhunter13/cv-autofill/pkg/execx"
)

// BuildExtractionService wires the text extractors, the OCR toolchain and the
// heuristic field extractor according to cfg. The keyword vocabulary is
// read from cfg.HeuristicsFile when set.
func BuildExtractionService(cfg config.Config) (usecase.ExtractionService, error) {
	vocab, err := config.LoadVocabulary(cfg.HeuristicsFile)
	if err != nil {
		return usecase.ExtractionService{}, err
	}
	ner, err := buildRecognizer(cfg.EntityRecognizer, vocab)
	if err != nil {
		return usecase.ExtractionService{}, err
	}
	runner := execx.NewRunner()
	svc := usecase.NewExtractionService(
		pdflayer.New(),
		docx.New(),
		poppler.New(runner, poppler.Options{
			PdftoppmBin: cfg.PdftoppmBin,
			PdfinfoBin:  cfg.PdfinfoBin,
			Scale:       cfg.RasterScale,
			MaxPages:    cfg.RasterMaxPages,
		}),
		tesseract.New(runner, tesseract.Options{
			Bin:         cfg.TesseractBin,
			Lang:        cfg.TesseractLang,
			TessdataDir: cfg.TessdataDir,
		}),
		heuristics.New(vocab, ner),
	)
	svc.Metrics = observability.ExtractionMetrics{}
	svc.OCRTimeout = cfg.OCRTimeout
	return svc, nil
}

// buildRecognizer picks the person/place recognizer. prose falls back to the
// lexicon on lines its model has nothing to say about.
func buildRecognizer(name string, vocab heuristics.Vocabulary) (heuristics.EntityRecognizer, error) {
	lexicon := heuristics.NewLexiconRecognizer(vocab)
	switch name {
	case "", "prose":
		return heuristics.NewProseRecognizer(vocab, lexicon), nil
	case "lexicon":
		return lexicon, nil
	}
	return nil, fmt.Errorf("op=app.buildRecognizer: %w: unknown entity recognizer %q", domain.ErrInvalidArgument, name)
}

// MissingTools lists OCR binaries from cfg that are not on PATH. Scanned
// documents and images fail until they are installed.
func MissingTools(cfg config.Config) []string {
	var missing []string
	for _, bin := range []string{cfg.PdftoppmBin, cfg.PdfinfoBin, cfg.TesseractBin} {
		if bin != "" && !execx.Available(bin) {
			missing = append(missing, bin)
		}
	}
	return missing
}
