package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/himanishpuri/StringTuner/internal/display"
	"github.com/himanishpuri/StringTuner/internal/render"
	"github.com/himanishpuri/StringTuner/pkg/logger"
	"github.com/himanishpuri/StringTuner/pkg/stringtuner"
	"github.com/himanishpuri/StringTuner/pkg/stringtuner/audio"
	"github.com/himanishpuri/StringTuner/pkg/utils"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// Global flags
var (
	dbPath    string
	tempDir   string
	fftSize   int
	threshold int
	tolerance float64
	minFreq   float64
	maxFreq   float64
	logLevel  string
	noColor   bool
)

// Command flags
var (
	verbose     bool
	noSave      bool
	toneOut     string
	toneSeconds float64
	toneRate    int
	imageOut    string
	imageWidth  int
	imageHeight int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stringtuner",
	Short: "Detect guitar string pitch and check it against standard tuning",
	Long: `StringTuner finds the fundamental of a plucked guitar string and tells
you which open string (E2 A2 D3 G3 B3 E4) it is closest to, and whether
it is in tune.

Pipeline: audio -> windowed FFT -> byte spectrum -> peak scan -> note match`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <audio_file>",
	Short: "Analyze a recording and store the tuning session",
	Long: `Play an audio file through the tuner tick by tick and summarize
which string it matched and how often it was in tune. Non-WAV input
is converted with ffmpeg.

Examples:
  stringtuner analyze low-e.wav
  stringtuner --tolerance 1 analyze pluck.mp3 --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var classifyCmd = &cobra.Command{
	Use:   "classify <frequency_hz>",
	Short: "Match a frequency against the reference notes",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "List the standard tuning reference notes",
	RunE:  runNotes,
}

var toneCmd = &cobra.Command{
	Use:   "tone <note>",
	Short: "Write the reference tone for a note as WAV",
	Long: `Synthesize the preset reference tone for one open string.

Example:
  stringtuner tone A2 -o a2.wav --seconds 2`,
	Args: cobra.ExactArgs(1),
	RunE: runTone,
}

var playCmd = &cobra.Command{
	Use:   "play <note|audio_file>",
	Short: "Run the live tuner display over a reference tone or a file",
	Long: `Play a source in real time and redraw the tuner display every tick.
A note name (E2, A2, ...) plays its synthesized reference tone.

Examples:
  stringtuner play E2
  stringtuner play recording.wav`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

var spectrogramCmd = &cobra.Command{
	Use:   "spectrogram <wav_file>",
	Short: "Render a spectrogram PNG of a WAV file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSpectrogram,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored tuning sessions",
	RunE:  runHistory,
}

var showCmd = &cobra.Command{
	Use:   "show <session_id>",
	Short: "Show a stored session with its readings",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <session_id>",
	Short: "Delete a stored session",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	defaults := stringtuner.DefaultConfig()

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dbPath, "db", getEnvOrDefault("STRINGTUNER_DB_PATH", defaults.DBPath), "Path to the SQLite database file")
	pf.StringVar(&tempDir, "temp", getEnvOrDefault("STRINGTUNER_TEMP_DIR", defaults.TempDir), "Directory for temporary audio conversion files")
	pf.IntVar(&fftSize, "fft-size", defaults.FFTSize, "FFT size (power of two, 32-32768)")
	pf.IntVar(&threshold, "threshold", int(defaults.AmplitudeThreshold), "Minimum peak amplitude (0-255)")
	pf.Float64Var(&tolerance, "tolerance", defaults.Tolerance, "In-tune tolerance in Hz")
	pf.Float64Var(&minFreq, "min-freq", defaults.Band.Min, "Lowest frequency searched (Hz)")
	pf.Float64Var(&maxFreq, "max-freq", defaults.Band.Max, "Highest frequency searched (Hz)")
	pf.StringVar(&logLevel, "log-level", getEnvOrDefault("LOG_LEVEL", "warn"), "Log level (debug, info, warn, error)")
	pf.BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(analyzeCmd, classifyCmd, notesCmd, toneCmd, playCmd,
		spectrogramCmd, historyCmd, showCmd, deleteCmd)

	analyzeCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print every tick with a detection")
	analyzeCmd.Flags().BoolVar(&noSave, "no-save", false, "Do not store the session in history")

	toneCmd.Flags().StringVarP(&toneOut, "output", "o", "", "Output WAV path (default: the note's tone file name)")
	toneCmd.Flags().Float64Var(&toneSeconds, "seconds", stringtuner.ToneSeconds, "Tone length in seconds")
	toneCmd.Flags().IntVar(&toneRate, "rate", stringtuner.ToneSampleRate, "Sample rate in Hz")

	spectrogramCmd.Flags().StringVarP(&imageOut, "output", "o", "", "Output PNG path (default: <input>.png)")
	spectrogramCmd.Flags().IntVar(&imageWidth, "width", render.DefaultWidth, "Image width in pixels")
	spectrogramCmd.Flags().IntVar(&imageHeight, "height", render.DefaultHeight, "Image height in pixels (frequency bins)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func setupLogging(cmd *cobra.Command, args []string) error {
	lvl, err := logger.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	log := logger.GetLogger()
	log.SetLevel(lvl)
	if noColor {
		log.SetColorize(false)
	}
	return nil
}

func useColor() bool {
	if noColor {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// tunerOptions maps the global flags onto engine options.
func tunerOptions() ([]stringtuner.Option, error) {
	if threshold < 0 || threshold > 255 {
		return nil, fmt.Errorf("--threshold must be in 0-255, got %d", threshold)
	}
	return []stringtuner.Option{
		stringtuner.WithDBPath(dbPath),
		stringtuner.WithTempDir(tempDir),
		stringtuner.WithFFTSize(fftSize),
		stringtuner.WithThreshold(uint8(threshold)),
		stringtuner.WithTolerance(tolerance),
		stringtuner.WithBand(minFreq, maxFreq),
		stringtuner.WithLogger(logger.GetLogger().Named("cli")),
	}, nil
}

func createService(extra ...stringtuner.Option) (stringtuner.Service, error) {
	opts, err := tunerOptions()
	if err != nil {
		return nil, err
	}
	return stringtuner.NewService(append(opts, extra...)...)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	var extra []stringtuner.Option
	if noSave {
		extra = append(extra, stringtuner.WithoutHistory())
	}
	svc, err := createService(extra...)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	ctx, cancel := signalContext()
	defer cancel()

	rep, err := svc.AnalyzeFile(ctx, args[0])
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	out := cmd.OutOrStdout()
	p := display.NewPrinter(out, useColor())
	if verbose {
		tick := time.Second / time.Duration(stringtuner.DefaultConfig().TickRate)
		for i, r := range rep.Readings {
			if !r.Detected {
				continue
			}
			fmt.Fprintf(out, "%8s  %s %s\n", (time.Duration(i+1) * tick).Truncate(time.Millisecond),
				display.Headline(r), display.Verdict(r.Tuning))
		}
		fmt.Fprintln(out)
	}
	return p.Report(rep)
}

// parseFrequency rejects anything that is not a finite positive number.
func parseFrequency(raw string) (float64, error) {
	freq, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(freq) || math.IsInf(freq, 0) || freq <= 0 {
		return 0, fmt.Errorf("invalid frequency %q", raw)
	}
	return freq, nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	freq, err := parseFrequency(args[0])
	if err != nil {
		return err
	}

	notes := stringtuner.StandardTuning
	res := stringtuner.Classify(freq, notes, tolerance)
	r := stringtuner.Reading{
		Frequency: freq,
		Detected:  true,
		Tuning:    res,
		Nearest:   stringtuner.NearestNotes(freq, notes, 3),
	}

	out := cmd.OutOrStdout()
	if err := display.NewPrinter(out, useColor()).Frame(true, r); err != nil {
		return err
	}
	fmt.Fprintf(out, "Difference: %.2fHz (%+.1f cents)\n", res.Difference, res.Cents)
	fmt.Fprintln(out, "Nearest Notes:")
	for _, n := range r.Nearest {
		fmt.Fprintf(out, "  %s: %gHz (diff: %.1fHz)\n", n.Note.Name, n.Note.Frequency, n.Difference)
	}
	return nil
}

func runNotes(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STRING\tNOTE\tFREQUENCY\tTONE FILE")
	for i, n := range stringtuner.StandardTuning {
		fmt.Fprintf(w, "%d\t%s\t%.2f Hz\t%s\n", len(stringtuner.StandardTuning)-i, n.Name, n.Frequency, n.ToneFile)
	}
	return w.Flush()
}

func runTone(cmd *cobra.Command, args []string) error {
	note, ok := stringtuner.LookupNote(args[0])
	if !ok {
		return fmt.Errorf("unknown note %q", args[0])
	}
	samples, err := stringtuner.ReferenceTone(note, toneRate, toneSeconds)
	if err != nil {
		return err
	}

	path := toneOut
	if path == "" {
		path = note.ToneFile
	}
	if err := audio.WriteWav(path, samples, toneRate); err != nil {
		return fmt.Errorf("writing tone: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %.2f Hz, %.1fs)\n", path, note.Name, note.Frequency, toneSeconds)
	return nil
}

// loadSource returns mono samples for a note name or an audio file.
func loadSource(ctx context.Context, arg string) ([]float64, int, string, error) {
	if note, ok := stringtuner.LookupNote(arg); ok {
		samples, err := stringtuner.ReferenceTone(note, stringtuner.ToneSampleRate, stringtuner.ToneSeconds)
		return samples, stringtuner.ToneSampleRate, note.ToneFile, err
	}

	path := arg
	if !audio.IsWAV(arg) {
		converted, err := audio.ConvertToMonoWAV(ctx, arg, tempDir, audio.ConvertWAVConfig{})
		if err != nil {
			return nil, 0, "", fmt.Errorf("audio conversion failed: %w", err)
		}
		defer utils.DeleteFile(converted)
		path = converted
	}
	samples, rate, err := audio.ReadWavAsFloat64(path)
	return samples, rate, filepath.Base(arg), err
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	samples, rate, name, err := loadSource(ctx, args[0])
	if err != nil {
		return err
	}

	opts, err := tunerOptions()
	if err != nil {
		return err
	}
	cfg := stringtuner.NewConfig(opts...)
	sess, err := stringtuner.NewSessionFromConfig(float64(rate), cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Load(samples, rate); err != nil {
		return err
	}
	if err := sess.Play(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	color := useColor()
	p := display.NewPrinter(out, color)
	ticker := time.NewTicker(time.Duration(float64(time.Second) / cfg.TickRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sess.Pause()
			fmt.Fprintln(out)
			return p.Frame(false, stringtuner.Reading{})
		case <-ticker.C:
		}

		r, ok, err := sess.Tick()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if color {
			fmt.Fprint(out, "\033[H\033[2J")
		}
		fmt.Fprintf(out, "%s  %s\n", name, sess.Position().Truncate(10*time.Millisecond))
		if err := p.Frame(true, r); err != nil {
			return err
		}
		if !sess.Playing() {
			break
		}
	}
	return p.Frame(false, stringtuner.Reading{})
}

func runSpectrogram(cmd *cobra.Command, args []string) error {
	out := imageOut
	if out == "" {
		out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".png"
	}
	err := render.SpectrogramFile(args[0], out, render.Options{Width: imageWidth, Height: imageHeight})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved spectrogram to %s\n", out)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	svc, err := createService()
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	sessions, err := svc.ListSessions()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions in history")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tNOTE\tIN TUNE\tDURATION\tCREATED")
	for _, s := range sessions {
		note := s.DominantNote
		if note == "" {
			note = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%.1fs\t%s\n", s.ID, s.Source, note,
			s.InTuneTicks, s.DetectedTicks, float64(s.DurationMs)/1000, s.CreatedAt.Format(time.DateTime))
	}
	return w.Flush()
}

func runShow(cmd *cobra.Command, args []string) error {
	id := args[0]
	if !utils.IsUUID(id) {
		return fmt.Errorf("invalid session ID %q", id)
	}
	svc, err := createService()
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	s, err := svc.GetSession(id)
	if err != nil {
		return sessionError(id, err)
	}
	readings, err := svc.GetReadings(id)
	if err != nil {
		return sessionError(id, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session:  %s\n", s.ID)
	fmt.Fprintf(out, "Source:   %s (%d Hz, FFT %d)\n", s.Source, s.SampleRate, s.FFTSize)
	fmt.Fprintf(out, "Created:  %s\n", s.CreatedAt.Format(time.DateTime))
	fmt.Fprintf(out, "Dominant: %s, %d of %d detected ticks in tune\n\n", s.DominantNote, s.InTuneTicks, s.DetectedTicks)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TICK\tTIME\tFREQUENCY\tNOTE\tDIFF\tCENTS\tVERDICT")
	for _, r := range readings {
		if r.Frequency <= 0 {
			continue
		}
		verdict := display.Verdict(stringtuner.TuningResult{Note: r.Note, InTune: r.InTune, NeedsHigher: r.NeedsHigher})
		fmt.Fprintf(w, "%d\t%dms\t%.1fHz\t%s\t%.2f\t%+.1f\t%s\n",
			r.Tick, r.TimeMs, r.Frequency, r.Note, r.Difference, r.Cents, verdict)
	}
	return w.Flush()
}

func runDelete(cmd *cobra.Command, args []string) error {
	id := args[0]
	if !utils.IsUUID(id) {
		return fmt.Errorf("invalid session ID %q", id)
	}
	svc, err := createService()
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	if err := svc.DeleteSession(id); err != nil {
		return sessionError(id, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", id)
	logger.GetLogger().Infof("Deleted session ID=%s", id)
	return nil
}

func sessionError(id string, err error) error {
	if errors.Is(err, stringtuner.ErrSessionNotFound) {
		return fmt.Errorf("session %s not found", id)
	}
	return err
}
