package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	doclingeval "github.com/DS4SD/docling-eval"
	"github.com/DS4SD/docling-eval/annotation"
	"github.com/DS4SD/docling-eval/model"
	"github.com/DS4SD/docling-eval/ocr"
	"github.com/DS4SD/docling-eval/pages"
	"github.com/DS4SD/docling-eval/text"
)

// buildSettings is the effective build configuration, resolved through
// viper from flags, environment, and the config file.
type buildSettings struct {
	Annotations string
	Overview    string
	SourceDir   string
	OutputDir   string
	IoUCutoff   float64
	ImageScale  float64
	UseOCR      bool
	OCRLang     string
}

// currentSettings reads the effective values. Precedence is flag > env >
// config file > flag default.
func currentSettings() buildSettings {
	return buildSettings{
		Annotations: viper.GetString("annotations"),
		Overview:    viper.GetString("overview"),
		SourceDir:   viper.GetString("source_dir"),
		OutputDir:   viper.GetString("output"),
		IoUCutoff:   viper.GetFloat64("iou_cutoff"),
		ImageScale:  viper.GetFloat64("image_scale"),
		UseOCR:      viper.GetBool("ocr"),
		OCRLang:     viper.GetString("ocr_lang"),
	}
}

// resolve joins a relative overview path onto the source directory.
func (st buildSettings) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(st.SourceDir, path)
}

// overviewEntry ties one annotated image back to its source artifacts. All
// paths are relative to source_dir unless absolute.
type overviewEntry struct {
	PDFFile      string   `json:"pdf_file"`
	PageImgFiles []string `json:"page_img_files"`
	CellFiles    []string `json:"cell_files"`
	PageNos      []int    `json:"page_nos"`
	TrueFile     string   `json:"true_file"`
}

// manifest is written next to the output documents as dataset_info.json.
type manifest struct {
	RunID     string    `json:"run_id"`
	CreatedAt time.Time `json:"created_at"`
	Built     int       `json:"built"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	Warnings  int       `json:"warnings"`
	Documents []string  `json:"documents"`
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build ground-truth documents for every annotated image",
	Long: `Build reads a CVAT annotation export and an overview map tying each
annotated image to its source PDF, page renders, parsed cell files, and
optional reference document, then writes one ground-truth JSON document
per image.

Images with unusable annotations (no boxes, no polylines, or an ambiguous
reading order) are skipped with a warning; the batch continues.

Examples:
  gtbuild build --annotations annotations.xml --overview overview_map.json --output ./out
  gtbuild build --annotations annotations.xml --overview overview_map.json \
      --source-dir ./dataset --iou-cutoff 0.85 --output ./out
  GTBUILD_IOU_CUTOFF=0.85 gtbuild build --annotations annotations.xml --overview overview_map.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		st := currentSettings()
		if st.Annotations == "" {
			return fmt.Errorf("no annotations file given (flag --annotations, config key annotations, or GTBUILD_ANNOTATIONS)")
		}
		if st.Overview == "" {
			return fmt.Errorf("no overview map given (flag --overview, config key overview, or GTBUILD_OVERVIEW)")
		}
		return runBuild(cmd.Context(), logger, st)
	},
}

func init() {
	buildCmd.Flags().String("annotations", "", "CVAT annotations XML file (required)")
	buildCmd.Flags().String("overview", "", "overview map JSON file (required)")
	buildCmd.Flags().String("source-dir", ".", "base directory for relative paths in the overview map")
	buildCmd.Flags().String("output", "./groundtruth-out", "output directory")
	buildCmd.Flags().Float64("iou-cutoff", 0.90, "table reconciliation IoU cutoff")
	buildCmd.Flags().Float64("image-scale", 1.0, "picture crop scale relative to the page render")
	buildCmd.Flags().Bool("ocr", false, "use OCR as a fallback for boxes without extractable text")
	buildCmd.Flags().String("ocr-lang", "eng", "OCR language")
	bindBuildFlags()
}

// bindBuildFlags registers the build flags under their underscored viper
// keys, so gtbuild.yaml and GTBUILD_* environment variables feed the same
// settings as the flags.
func bindBuildFlags() {
	_ = viper.BindPFlag("annotations", buildCmd.Flags().Lookup("annotations"))
	_ = viper.BindPFlag("overview", buildCmd.Flags().Lookup("overview"))
	_ = viper.BindPFlag("source_dir", buildCmd.Flags().Lookup("source-dir"))
	_ = viper.BindPFlag("output", buildCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("iou_cutoff", buildCmd.Flags().Lookup("iou-cutoff"))
	_ = viper.BindPFlag("image_scale", buildCmd.Flags().Lookup("image-scale"))
	_ = viper.BindPFlag("ocr", buildCmd.Flags().Lookup("ocr"))
	_ = viper.BindPFlag("ocr_lang", buildCmd.Flags().Lookup("ocr-lang"))
}

func runBuild(ctx context.Context, logger *slog.Logger, st buildSettings) error {
	records, err := annotation.DecodeFile(st.Annotations)
	if err != nil {
		return fmt.Errorf("reading annotations: %w", err)
	}
	overview, err := loadOverview(st.Overview)
	if err != nil {
		return fmt.Errorf("reading overview map: %w", err)
	}

	docsDir := filepath.Join(st.OutputDir, "json-groundtruth")
	if err := os.MkdirAll(docsDir, 0755); err != nil {
		return err
	}

	recognizer := setupOCR(st, logger)
	if recognizer != nil {
		defer recognizer.Close()
	}

	m := manifest{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry, ok := overview[rec.Name]
		if !ok {
			logger.Warn("image not in overview map, skipping", "image", rec.Name)
			m.Skipped++
			continue
		}

		outName := strings.TrimSuffix(rec.Name, filepath.Ext(rec.Name)) + ".json"
		outPath := filepath.Join(docsDir, outName)

		warnings, err := buildOne(st, rec, entry, recognizer, logger, outPath)
		m.Warnings += len(warnings)
		switch {
		case err == nil:
			m.Built++
			m.Documents = append(m.Documents, outName)
			logger.Info("built ground truth", "image", rec.Name, "warnings", len(warnings))
		case errors.Is(err, annotation.ErrMissingAnnotation),
			errors.Is(err, annotation.ErrAmbiguousReadingOrder):
			m.Skipped++
			logger.Warn("unusable annotation, skipping", "image", rec.Name, "error", err)
		default:
			m.Failed++
			logger.Error("build failed", "image", rec.Name, "error", err)
		}
	}

	if err := writeManifest(filepath.Join(st.OutputDir, "dataset_info.json"), m); err != nil {
		return err
	}
	logger.Info("batch complete",
		"built", m.Built, "skipped", m.Skipped, "failed", m.Failed, "warnings", m.Warnings)

	if m.Built == 0 && m.Failed > 0 {
		return fmt.Errorf("no documents built (%d failed, %d skipped)", m.Failed, m.Skipped)
	}
	return nil
}

// buildOne assembles the collaborators for one image and runs its build.
func buildOne(st buildSettings, rec annotation.ImageRecord, entry overviewEntry, recognizer *ocr.Recognizer, logger *slog.Logger, outPath string) ([]doclingeval.Warning, error) {
	if len(entry.PageNos) == 0 || len(entry.PageNos) != len(entry.PageImgFiles) {
		return nil, fmt.Errorf("overview entry for %q: page_nos and page_img_files must align", rec.Name)
	}

	imagePaths := make(map[int]string, len(entry.PageNos))
	for i, no := range entry.PageNos {
		imagePaths[no] = st.resolve(entry.PageImgFiles[i])
	}
	src, err := pages.NewFileSource(st.resolve(entry.PDFFile), imagePaths)
	if err != nil {
		return nil, fmt.Errorf("opening page source: %w", err)
	}
	pgs, err := doclingeval.LoadPages(src, entry.PageNos...)
	if err != nil {
		return nil, fmt.Errorf("loading pages: %w", err)
	}

	builder := doclingeval.FromRecord(rec).
		WithPages(pgs...).
		Page(entry.PageNos[0]).
		IoUCutoff(st.IoUCutoff).
		ImageScale(st.ImageScale).
		Logger(logger)

	for i, cellFile := range entry.CellFiles {
		if i >= len(entry.PageNos) {
			break
		}
		pp, err := text.LoadPageFile(st.resolve(cellFile))
		if err != nil {
			logger.Warn("cell file unreadable, page will have no extractable text",
				"image", rec.Name, "file", cellFile, "error", err)
			continue
		}
		builder = builder.WithParsedPage(entry.PageNos[i], pp)
	}

	if entry.TrueFile != "" {
		ref, err := model.LoadDocumentFile(st.resolve(entry.TrueFile))
		if err != nil {
			logger.Warn("reference document unreadable, tables will have no cell structure",
				"image", rec.Name, "file", entry.TrueFile, "error", err)
		} else {
			builder = builder.WithReference(ref)
		}
	}

	if recognizer != nil {
		builder = builder.WithOCR(recognizer)
	}

	doc, warnings, err := builder.Build()
	if err != nil {
		return warnings, err
	}
	if err := doc.SaveFile(outPath); err != nil {
		return warnings, fmt.Errorf("writing document: %w", err)
	}
	return warnings, nil
}

// setupOCR returns a configured recognizer, or nil when OCR is disabled or
// unavailable in this build.
func setupOCR(st buildSettings, logger *slog.Logger) *ocr.Recognizer {
	if !st.UseOCR {
		return nil
	}
	r, err := ocr.New()
	if err != nil {
		logger.Warn("OCR unavailable, continuing without fallback", "error", err)
		return nil
	}
	if err := r.SetLanguage(st.OCRLang); err != nil {
		logger.Warn("OCR language rejected, continuing without fallback", "lang", st.OCRLang, "error", err)
		_ = r.Close()
		return nil
	}
	return r
}

func loadOverview(path string) (map[string]overviewEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]overviewEntry
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func writeManifest(path string, m manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
