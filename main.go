// txdict: TxTranslation dictionary tool to inspect, convert and merge
// v1/v2 dictionary files.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/minios-linux/txdict/config"
	"github.com/minios-linux/txdict/culture"
	"github.com/minios-linux/txdict/dictionary"
	"github.com/minios-linux/txdict/format"
	"github.com/minios-linux/txdict/location"
	"github.com/minios-linux/txdict/merge"
	"github.com/minios-linux/txdict/provider"
	"github.com/minios-linux/txdict/systemkeys"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flag
// ---------------------------------------------------------------------------

var rootDir string

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "txdict",
		Short: "TxTranslation dictionary tool",
		Long: `txdict: inspect, convert and merge TxTranslation dictionaries.

Reads both dictionary formats with auto-detection:
  v1  one file per culture (app.en.txd, app.de.txd, ...)
  v2  all cultures in one file (app.txd)

Commands:
  status       Show dictionaries and per-culture statistics
  show         Print a dictionary as YAML
  convert      Save a dictionary in another format
  import       Merge dictionaries into another one
  system-keys  Insert the built-in system keys for a culture
  check        Validate dictionaries

Defaults are read from .txdict.yaml in the project root.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// --root is inherited by every subcommand
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory (holds .txdict.yaml)")

	root.AddCommand(
		newStatusCmd(),
		newShowCmd(),
		newConvertCmd(),
		newImportCmd(),
		newSystemKeysCmd(),
		newCheckCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "txdict version %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit:    %s\n", commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// Shared plumbing
// ---------------------------------------------------------------------------

// logReporter forwards provider messages to the log helpers.
type logReporter struct{}

func (logReporter) Infof(format string, args ...any) { logInfo(format, args...) }
func (logReporter) Warnf(format string, args ...any) { logWarning(format, args...) }

// policyPrompter answers the related-files question according to the
// configured policy, asking on the terminal for "ask".
type policyPrompter struct {
	policy string
	in     io.Reader
	out    io.Writer
}

func (p policyPrompter) AskLoadRelated(missed []location.Location) provider.Decision {
	switch p.policy {
	case config.RelatedAll:
		return provider.LoadAll
	case config.RelatedSelected:
		return provider.LoadSelectedOnly
	}

	fmt.Fprintf(p.out, "Found %d related file(s) that were not selected:\n", len(missed))
	for _, loc := range missed {
		fmt.Fprintf(p.out, "  %s\n", loc)
	}
	fmt.Fprintf(p.out, "Load them too? [y/N/c] ")

	scanner := bufio.NewScanner(p.in)
	if !scanner.Scan() {
		fmt.Fprintln(p.out)
		return provider.LoadSelectedOnly
	}
	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "y", "yes", "a", "all":
		return provider.LoadAll
	case "c", "cancel":
		return provider.Cancel
	}
	return provider.LoadSelectedOnly
}

// versionValue is a pflag.Value for format versions.
type versionValue struct {
	v *format.Version
}

var _ pflag.Value = versionValue{}

func (f versionValue) String() string {
	if f.v == nil || *f.v == format.Unknown {
		return ""
	}
	return f.v.String()
}

func (f versionValue) Set(s string) error {
	v, err := format.ParseVersion(s)
	if err != nil {
		return err
	}
	*f.v = v
	return nil
}

func (f versionValue) Type() string { return "format" }

// session bundles the configuration and provider for one command run.
type session struct {
	cfg    *config.File
	prov   *provider.Provider
	prompt provider.Prompter
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.LoadOrDefault(rootDir)
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:    cfg,
		prov:   provider.New(logReporter{}),
		prompt: policyPrompter{policy: cfg.Related, in: cmd.InOrStdin(), out: cmd.ErrOrStderr()},
	}, nil
}

// locations expands command arguments into locations. Without arguments the
// dictionaries declared in the config are used, or else the project root is
// scanned.
func (s *session) locations(args []string) ([]location.Location, error) {
	if len(args) == 0 {
		if len(s.cfg.Dictionaries) > 0 {
			return s.cfg.Locations(rootDir)
		}
		args = []string{rootDir}
	}
	return location.Expand(args, s.cfg.Extensions, s.cfg.Recursive)
}

// load reads the dictionaries at args.
func (s *session) load(args []string) ([]provider.Loaded, error) {
	locs, err := s.locations(args)
	if err != nil {
		return nil, err
	}
	if len(locs) == 0 {
		return nil, errors.New("no dictionary files found")
	}
	for _, loc := range locs {
		if v := s.cfg.Forced(rootDir, loc); v != format.Unknown {
			s.prov.Force(loc, v)
		}
	}
	return s.prov.Load(locs, s.prompt)
}

// loadOne reads exactly one dictionary from path.
func (s *session) loadOne(path string) (provider.Loaded, error) {
	loaded, err := s.load([]string{path})
	if err != nil {
		return provider.Loaded{}, err
	}
	switch {
	case len(loaded) == 0:
		return provider.Loaded{}, fmt.Errorf("%s: %w", path, format.ErrUnsupportedFormat)
	case len(loaded) > 1:
		return provider.Loaded{}, fmt.Errorf("%s holds %d dictionaries, expected one", path, len(loaded))
	}
	l := loaded[0]
	if l.Err != nil {
		return provider.Loaded{}, l.Err
	}
	return l, nil
}

// defaultTarget returns where a loaded dictionary is written in format to.
// A v1 family upgraded to v2 goes to a single file named after the family.
func defaultTarget(l provider.Loaded, to format.Version) location.Location {
	if l.Description.Version == format.V1 && to == format.V2 {
		if _, ok := l.Description.Location.(*location.File); ok {
			return location.NewFile(l.Description.Name + ".txd")
		}
	}
	return l.Description.Location
}

// save writes t and logs the outcome.
func (s *session) save(t *dictionary.Translation, loc location.Location, v format.Version) error {
	if err := s.prov.Save(t, loc, v); err != nil {
		return fmt.Errorf("saving %s: %w", loc, err)
	}
	logSuccess("Saved %s (%s, %d culture(s), %d key(s))", loc, v, len(t.Cultures), t.KeyCount())
	return nil
}

// checkV1 logs the keys that format v1 cannot represent faithfully and
// reports whether there were any.
func checkV1(t *dictionary.Translation) bool {
	issues := format.V1Issues(t)
	for _, is := range issues {
		logWarning("v1: %s", is)
	}
	return len(issues) > 0
}

// ---------------------------------------------------------------------------
// status (read-only: dictionaries + per-culture stats)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [paths...]",
		Short: "Show dictionaries and per-culture statistics",
		Long: `Discover dictionaries in files and directories and show their format,
cultures and translation progress relative to the primary culture.

Related v1 files that were not selected are listed but not loaded.
Does not modify any files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			s.prompt = provider.PrompterFunc(func([]location.Location) provider.Decision {
				return provider.LoadSelectedOnly
			})
			loaded, err := s.load(args)
			if err != nil {
				return err
			}
			if len(loaded) == 0 {
				logInfo("No dictionaries found.")
				return nil
			}
			for _, l := range loaded {
				showStats(cmd.OutOrStdout(), l, s.cfg.Label(rootDir, l.Description.Location))
			}
			return nil
		},
	}

	return cmd
}

// cultureProgress counts the keys of the reference culture that c
// translates.
func cultureProgress(ref, c *dictionary.Culture) (translated, total int) {
	for _, k := range ref.Keys {
		if systemkeys.IsSystemKey(k.Key) {
			continue
		}
		total++
		if got, ok := c.Get(k.ID()); ok && (got.Text != "" || got.AcceptMissing) {
			translated++
		}
	}
	return translated, total
}

// showStats prints one dictionary. label is the name declared in the
// config, if any.
func showStats(w io.Writer, l provider.Loaded, label string) {
	t := l.Translation
	d := l.Description

	title := d.ShortName
	if label != "" {
		title = label
	}
	fmt.Fprintf(w, "\n%s%s%s (%s)\n", colorBlue, title, colorReset, d.Version)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "  Location:   %s\n", d.Name)
	if t.Name != "" {
		fmt.Fprintf(w, "  Name:       %s\n", t.Name)
	}
	if t.IsTemplate {
		fmt.Fprintf(w, "  Template:   yes\n")
	}
	fmt.Fprintf(w, "  Files:      %d\n", len(l.Sources))
	fmt.Fprintf(w, "  Keys:       %d\n\n", t.KeyCount())

	ref := t.Primary()
	if ref == nil && len(t.Cultures) > 0 {
		ref = &t.Cultures[0]
	}

	fmt.Fprintf(w, "%-4s %-8s %-20s %-8s %-8s\n", "", "Culture", "Name", "Keys", "Percent")
	fmt.Fprintln(w, strings.Repeat("─", 52))
	for i := range t.Cultures {
		c := &t.Cultures[i]
		meta := culture.Resolve(c.Name)
		name := meta.Name
		if c.IsPrimary {
			name += " *"
		}
		translated, total := cultureProgress(ref, c)
		percent := 100
		if total > 0 {
			percent = translated * 100 / total
		}
		fmt.Fprintf(w, "%-4s %-8s %-20s %-8d %d%%\n", meta.Flag, c.Name, name, len(c.Keys), percent)
	}
	fmt.Fprintln(w, strings.Repeat("─", 52))

	if len(l.Missed) > 0 {
		logWarning("%s: %d related file(s) not selected", d.ShortName, len(l.Missed))
		for _, loc := range l.Missed {
			fmt.Fprintf(w, "  not loaded: %s\n", loc)
		}
	}
}

// ---------------------------------------------------------------------------
// show (print a dictionary as YAML)
// ---------------------------------------------------------------------------

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <path>",
		Short: "Print a dictionary as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			l, err := s.loadOne(args[0])
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(l.Translation); err != nil {
				return fmt.Errorf("encoding YAML: %w", err)
			}
			return enc.Close()
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// convert (save in another format)
// ---------------------------------------------------------------------------

func newConvertCmd() *cobra.Command {
	var (
		to     format.Version
		out    string
		force  bool
		export bool
	)

	cmd := &cobra.Command{
		Use:   "convert <path>",
		Short: "Save a dictionary in another format",
		Long: `Load a dictionary (all files of a v1 family) and save it again.

Without --to the format follows .txdict.yaml: v1 dictionaries are upgraded
to v2 when "upgrade: true" is set. A v1 family converted to v2 is written
to <prefix>.txd unless --out is given.

Saving as v1 is refused when keys use features that v1 readers do not
support (modulo counts, {#} and {=...} placeholders) unless --force is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			l, err := s.loadOne(args[0])
			if err != nil {
				return err
			}

			target := to
			if target == format.Unknown {
				target = s.cfg.SaveVersion(l.Description.Version)
			}
			t := l.Translation
			if export {
				t.IsTemplate = false
			}
			if target == format.V1 && checkV1(t) && !force {
				return errors.New("dictionary uses features not supported by format v1 (use --force to save anyway)")
			}

			loc := defaultTarget(l, target)
			if out != "" {
				loc = location.NewFile(out)
			}
			return s.save(t, loc, target)
		},
	}

	cmd.Flags().Var(versionValue{&to}, "to", "Target format: v1 or v2")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: next to the source)")
	cmd.Flags().BoolVar(&force, "force", false, "Save as v1 even if features would be lost")
	cmd.Flags().BoolVar(&export, "export", false, "Clear the template flag in the output")

	return cmd
}

// ---------------------------------------------------------------------------
// import (merge dictionaries into a target)
// ---------------------------------------------------------------------------

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <target> <sources...>",
		Short: "Merge dictionaries into another one",
		Long: `Merge the keys of one or more dictionaries into the target dictionary.

Texts from the sources replace existing texts of the same key. Cultures the
target does not have yet are added. The target is saved in its own format
(or upgraded to v2 when .txdict.yaml sets "upgrade: true").`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			dst, err := s.loadOne(args[0])
			if err != nil {
				return err
			}
			sources, err := s.load(args[1:])
			if err != nil {
				return err
			}

			var total merge.Stats
			for _, src := range sources {
				if len(src.Sources) == 0 {
					continue
				}
				stats := merge.Into(dst.Translation, src.Translation)
				logInfo("%s: %d culture(s) added, %d key(s) added, %d updated",
					src.Description.ShortName, stats.Cultures, stats.Added, stats.Updated)
				total.Cultures += stats.Cultures
				total.Added += stats.Added
				total.Updated += stats.Updated
			}
			if total == (merge.Stats{}) {
				logInfo("Nothing to import.")
				return nil
			}

			v := s.cfg.SaveVersion(dst.Description.Version)
			if v == format.V1 {
				checkV1(dst.Translation)
			}
			return s.save(dst.Translation, defaultTarget(dst, v), v)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// system-keys (insert built-in Tx: keys)
// ---------------------------------------------------------------------------

func newSystemKeysCmd() *cobra.Command {
	var (
		cultureName string
		keep        bool
	)

	cmd := &cobra.Command{
		Use:   "system-keys <target>",
		Short: "Insert the built-in system keys for a culture",
		Long: `Insert the "Tx:" system keys (separators, quotes, relative time phrases)
for one culture into a dictionary. The culture is added if it is missing.

Existing system keys are overwritten unless --keep-existing is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cultureName == "" {
				return errors.New("--culture is required")
			}
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			dst, err := s.loadOne(args[0])
			if err != nil {
				return err
			}
			keys, err := systemkeys.ForCulture(s.prov, cultureName)
			if err != nil {
				return err
			}

			var stats merge.Stats
			if keep {
				stats = merge.Template(dst.Translation, keys)
			} else {
				stats = merge.Into(dst.Translation, keys)
			}
			logInfo("System keys for %s: %d added, %d updated", cultureName, stats.Added, stats.Updated)
			if base, _, ok := strings.Cut(cultureName, "-"); ok {
				logInfo("Consider adding the system keys for the base culture %s as well.", base)
			}

			v := s.cfg.SaveVersion(dst.Description.Version)
			return s.save(dst.Translation, defaultTarget(dst, v), v)
		},
	}

	cmd.Flags().StringVarP(&cultureName, "culture", "c", "", "Culture to insert the system keys for (required)")
	cmd.Flags().BoolVar(&keep, "keep-existing", false, "Keep texts of system keys that already exist")

	return cmd
}

// ---------------------------------------------------------------------------
// check (validate dictionaries)
// ---------------------------------------------------------------------------

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Validate dictionaries",
		Long: `Load dictionaries and report files that cannot be read, invalid culture
structure, and keys in v1 dictionaries that v1 readers cannot interpret.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			loaded, err := s.load(args)
			if err != nil {
				return err
			}

			problems := 0
			for _, l := range loaded {
				name := l.Description.Name
				if l.Err != nil {
					logError("%s: %v", name, l.Err)
					problems++
				}
				if err := l.Translation.Validate(); err != nil {
					logError("%s: %v", name, err)
					problems++
				}
				if l.Description.Version == format.V1 && checkV1(l.Translation) {
					problems++
				}
				if l.Translation.Primary() == nil {
					logWarning("%s: no primary culture", name)
				}
			}
			if problems > 0 {
				return fmt.Errorf("%d problem(s) in %d dictionary(ies)", problems, len(loaded))
			}
			logSuccess("%d dictionary(ies) OK", len(loaded))
			return nil
		},
	}

	return cmd
}
