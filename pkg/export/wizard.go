package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/goccy/go-json"
	"golang.org/x/term"

	"github.com/vanderheijden86/candlecourse/pkg/config"
)

// Export formats understood by the CLI and the wizard.
const (
	FormatPNG    = "png"
	FormatSVG    = "svg"
	FormatSQLite = "sqlite"
	FormatJSON   = "json"
)

// Formats lists every export format.
var Formats = []string{FormatPNG, FormatSVG, FormatSQLite, FormatJSON}

// ErrNotTerminal is returned by Wizard.Run when stdin is not a terminal.
var ErrNotTerminal = errors.New("export wizard needs an interactive terminal")

// WizardConfig holds the answers collected by the export wizard.
type WizardConfig struct {
	Format    string `json:"format"`
	OutputDir string `json:"output_dir"`
	Workers   int    `json:"workers,omitempty"`
	Title     string `json:"title,omitempty"`
}

// Wizard handles the interactive export flow.
type Wizard struct {
	config *WizardConfig
	out    io.Writer
}

// NewWizard creates an export wizard with defaults for every answer.
func NewWizard() *Wizard {
	return &Wizard{
		config: &WizardConfig{Format: FormatPNG, OutputDir: "candlecourse-export"},
		out:    os.Stdout,
	}
}

// IsTerminal reports whether stdin is connected to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func newForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
}

// Run asks for the export settings. Previously saved answers are offered as
// defaults, and the final answers are saved for the next run.
func (w *Wizard) Run() (*WizardConfig, error) {
	if !IsTerminal() {
		return nil, ErrNotTerminal
	}
	if saved, err := LoadWizardConfig(); err == nil && saved != nil {
		w.config = saved
	}
	w.printBanner()

	format := w.config.Format
	dir := w.config.OutputDir
	title := w.config.Title
	confirmed := true

	form := newForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Export format").
				Options(
					huh.NewOption("PNG chart per lesson", FormatPNG),
					huh.NewOption("SVG chart per lesson", FormatSVG),
					huh.NewOption("SQLite database", FormatSQLite),
					huh.NewOption("JSON curriculum", FormatJSON),
				).
				Value(&format),
			huh.NewInput().
				Title("Output directory").
				Value(&dir).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("output directory is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Title (optional)").
				Value(&title),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Start export?").
				Value(&confirmed).
				Affirmative("Export").
				Negative("Cancel"),
		),
	)
	if err := form.Run(); err != nil {
		return nil, err
	}
	if !confirmed {
		return nil, huh.ErrUserAborted
	}

	w.config.Format = format
	w.config.OutputDir = dir
	w.config.Title = title
	if err := SaveWizardConfig(w.config); err != nil {
		fmt.Fprintf(w.out, "Warning: could not save wizard settings: %v\n", err)
	}
	return w.config, nil
}

// GetConfig returns the collected answers.
func (w *Wizard) GetConfig() *WizardConfig {
	return w.config
}

func (w *Wizard) printBanner() {
	fmt.Fprintln(w.out, "")
	fmt.Fprintln(w.out, "╔══════════════════════════════════════════╗")
	fmt.Fprintln(w.out, "║        candlecourse → Export Wizard      ║")
	fmt.Fprintln(w.out, "╠══════════════════════════════════════════╣")
	fmt.Fprintln(w.out, "║  Press Ctrl+C anytime to cancel          ║")
	fmt.Fprintln(w.out, "╚══════════════════════════════════════════╝")
	fmt.Fprintln(w.out, "")
}

// WizardConfigPath returns the path of the saved wizard answers.
func WizardConfigPath() string {
	return filepath.Join(config.ConfigDir(), "export-wizard.json")
}

// LoadWizardConfig loads previously saved answers. A missing file yields
// nil and no error.
func LoadWizardConfig() (*WizardConfig, error) {
	return loadWizardConfigFrom(WizardConfigPath())
}

func loadWizardConfigFrom(path string) (*WizardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var cfg WizardConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveWizardConfig saves answers for future runs.
func SaveWizardConfig(cfg *WizardConfig) error {
	return saveWizardConfigTo(cfg, WizardConfigPath())
}

func saveWizardConfigTo(cfg *WizardConfig, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
