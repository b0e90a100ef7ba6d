package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	markdown "github.com/vlanse/go-term-markdown"
	"golang.org/x/term"

	"github.com/lumen-ai/lumen/chat"
	"github.com/lumen-ai/lumen/dispatch"
	"github.com/lumen-ai/lumen/history"
	"github.com/lumen-ai/lumen/registry"
	"github.com/lumen-ai/lumen/store"
)

var archiveMgr *history.Archive

func is_interactive(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	svc := dispatch.New(resolveKeys(cfg))

	rootCmd := &cobra.Command{
		Use:   "lumen [prompt]",
		Short: "Chat with hosted LLM providers from the terminal",
		Long:  "Lumen is a terminal chat client for Gemini, Groq, DeepSeek, Pollinations and OpenRouter,\nwith image generation, assistant personas, auto model routing and text to speech.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, args, cfg, svc)
		},
	}
	rootCmd.Flags().StringP("model", "m", "", "Model id, assistant id, or 'auto' (default auto)")
	rootCmd.Flags().BoolP("web", "w", false, "Rewrite the prompt to demand a web search with cited sources")

	rootCmd.AddCommand(imageCmd(cfg, svc))
	rootCmd.AddCommand(ttsCmd(cfg, svc))
	rootCmd.AddCommand(assistantsCmd(cfg))
	rootCmd.AddCommand(modelsCmd())
	rootCmd.AddCommand(sessionsCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(doctorCmd(cfg))

	arc, err := history.Open(filepath.Join(cfg.dataDir(), "archive.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to open archive: %v\n", err)
	} else {
		archiveMgr = arc
		defer arc.Close()
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func appArchive() chat.Archiver {
	if archiveMgr == nil {
		return nil
	}
	return archiveMgr
}

func runRoot(cmd *cobra.Command, args []string, cfg *Config, svc *dispatch.Service) error {
	modelFlag, _ := cmd.Flags().GetString("model")
	webFlag, _ := cmd.Flags().GetBool("web")

	if len(args) > 0 {
		return runOneShot(strings.Join(args, " "), modelFlag, webFlag, svc)
	}

	if !is_interactive(os.Stdout.Fd()) {
		return fmt.Errorf("no prompt given and stdout is not a terminal")
	}

	st, err := store.Open(cfg.dataDir())
	if err != nil {
		return err
	}
	app := chat.NewApp(svc, st, appArchive())
	return runChatTUI(app, cfg)
}

// runOneShot answers a single prompt without touching the saved session
// list. The turn still goes through the full state machine so auto-routing
// and error-as-message behavior match chat mode.
func runOneShot(prompt, modelFlag string, web bool, svc *dispatch.Service) error {
	app := chat.NewApp(svc, nil, appArchive())
	s := app.Sessions()[0]

	if modelFlag != "" && modelFlag != "auto" {
		if err := app.SetModel(s.ID, resolveModelFlag(app, modelFlag)); err != nil {
			return err
		}
	}

	reply := app.SendMessage(context.Background(), s.ID, chat.Send{Text: prompt, WebSearch: web})
	if reply == nil {
		return fmt.Errorf("empty prompt")
	}
	printReply(reply.Content)
	return nil
}

// resolveModelFlag interprets -m as an assistant id first, then a model id.
func resolveModelFlag(app *chat.App, flag string) chat.ModelRef {
	if _, ok := app.Assistant(flag); ok {
		return chat.AssistantRef(flag)
	}
	return chat.Literal(flag)
}

func printReply(text string) {
	if !is_interactive(os.Stdout.Fd()) {
		fmt.Println(text)
		return
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}
	if pack, ok := ParseSeoPack(text); ok {
		text = pack.Render()
	}
	os.Stdout.Write(markdown.Render(text, width, 0))
	fmt.Println()
}

func imageCmd(cfg *Config, svc *dispatch.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image [prompt]",
		Short: "Generate an image from a prompt",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			ratio, _ := cmd.Flags().GetString("ratio")
			model, _ := cmd.Flags().GetString("model")
			out, _ := cmd.Flags().GetString("out")
			urlOnly, _ := cmd.Flags().GetBool("url-only")

			if _, ok := registry.FindAspectRatio(ratio); !ok {
				return fmt.Errorf("unknown aspect ratio %q", ratio)
			}
			if _, ok := registry.FindImageModel(model); !ok {
				return fmt.Errorf("unknown image model %q", model)
			}

			url := dispatch.BuildImageURL(prompt, ratio, model)
			if urlOnly {
				fmt.Println(url)
				return nil
			}

			data, err := svc.Fetch(cmd.Context(), url)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s (%d bytes)\n", out, len(data))

			if is_interactive(os.Stdout.Fd()) && detectTerminalImageSupport() {
				if err := displayImageInTerminal(data, 400); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: inline preview failed: %v\n", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("ratio", cfg.aspectRatio(), "Aspect ratio (1:1, 16:9, 9:16, 4:3, 3:4)")
	cmd.Flags().String("model", cfg.imageModel(), "Image model (flux, turbo, gptimage)")
	cmd.Flags().StringP("out", "o", "image.jpg", "Output file")
	cmd.Flags().Bool("url-only", false, "Print the generation URL without fetching it")
	return cmd
}

func ttsCmd(cfg *Config, svc *dispatch.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tts [text]",
		Short: "Convert text to speech",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listVoices, _ := cmd.Flags().GetBool("voices"); listVoices {
				for _, v := range registry.Voices() {
					fmt.Printf("%-10s %-8s %s\n", v.ID, v.Gender, v.Description)
				}
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("no text given")
			}

			voice, _ := cmd.Flags().GetString("voice")
			out, _ := cmd.Flags().GetString("out")
			if _, ok := registry.FindVoice(voice); !ok {
				return fmt.Errorf("unknown voice %q (see --voices)", voice)
			}

			data, err := svc.Fetch(cmd.Context(), dispatch.SpeechURL(strings.Join(args, " "), voice))
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().String("voice", cfg.voice(), "Voice id (see --voices)")
	cmd.Flags().StringP("out", "o", "speech.mp3", "Output file")
	cmd.Flags().Bool("voices", false, "List available voices")
	return cmd
}

// openApp loads the persistent state for CRUD subcommands. No dispatcher is
// wired in: these commands never send a message.
func openApp(cfg *Config) (*chat.App, error) {
	st, err := store.Open(cfg.dataDir())
	if err != nil {
		return nil, err
	}
	return chat.NewApp(nil, st, appArchive()), nil
}

func assistantsCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assistants",
		Short: "Manage assistant personas",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved assistants",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cfg)
			if err != nil {
				return err
			}
			assistants := app.Assistants()
			if len(assistants) == 0 {
				fmt.Println("No assistants saved. Try 'lumen assistants gallery'.")
				return nil
			}
			for _, a := range assistants {
				fmt.Printf("%s  %-22s base=%s\n", a.ID, a.Name, a.BaseModelID)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "gallery",
		Short: "List prebuilt assistant templates",
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range registry.PrebuiltAssistants() {
				fmt.Printf("%-24s %s\n", t.Name, t.Description)
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add [template name]",
		Short: "Clone a prebuilt template into my assistants",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cfg)
			if err != nil {
				return err
			}
			a, err := app.AddPrebuilt(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Printf("Added %q (%s)\n", a.Name, a.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm [id]",
		Short: "Delete an assistant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cfg)
			if err != nil {
				return err
			}
			if _, ok := app.Assistant(args[0]); !ok {
				return fmt.Errorf("unknown assistant %q", args[0])
			}
			app.DeleteAssistant(args[0])
			fmt.Println("Deleted.")
			return nil
		},
	})

	return cmd
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List providers and models",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range registry.Providers() {
				name := p.Name
				if name == "" {
					name = p.ID
				}
				fmt.Printf("%s (%s)\n", name, p.APIType)
				for _, m := range p.Models {
					fmt.Printf("  %-40s %s\n", m.ID, m.Name)
				}
			}
			fmt.Println("\nRouting buckets (auto mode):")
			for _, c := range []registry.Category{registry.CategoryCoding, registry.CategoryCreative, registry.CategoryGeneral} {
				fmt.Printf("  %-8s -> %s\n", c, strings.Join(registry.CategoryModels(c), ", "))
			}
		},
	}
}

func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List archived sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if archiveMgr == nil {
				return fmt.Errorf("archive not available")
			}
			sessions, err := archiveMgr.ListRecent(20)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("No archived sessions.")
				return nil
			}

			if is_interactive(os.Stdout.Fd()) {
				picked, err := pickArchivedSession(sessions)
				if err != nil || picked == nil {
					return err
				}
				msgs, err := archiveMgr.Messages(picked.ID)
				if err != nil {
					return err
				}
				for _, m := range msgs {
					fmt.Printf("[%s] %s: %s\n", m.CreatedAt.Format("15:04"), m.Role, m.Content)
				}
				return nil
			}

			for _, s := range sessions {
				fmt.Printf("%s  %s  %-40s (%d messages, %s)\n",
					s.ID[:8], s.CreatedAt.Format("2006-01-02 15:04"), s.Title, s.Messages, s.ModelRef)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show [id prefix]",
		Short: "Print an archived session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if archiveMgr == nil {
				return fmt.Errorf("archive not available")
			}
			id, err := archiveMgr.ResolveSessionID(args[0])
			if err != nil {
				return err
			}
			msgs, err := archiveMgr.Messages(id)
			if err != nil {
				return err
			}
			for _, m := range msgs {
				fmt.Printf("[%s] %s: %s\n", m.CreatedAt.Format("15:04"), m.Role, m.Content)
			}
			return nil
		},
	})

	return cmd
}

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search archived conversations",
		Long:  "Full-text search over past messages. Use 'user:term' or 'ai:term' to filter by role.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if archiveMgr == nil {
				return fmt.Errorf("archive not available")
			}
			results, err := archiveMgr.Search(args[0])
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("No matches found.")
				return nil
			}
			for _, r := range results {
				fmt.Printf("\033[1;34m%s\033[0m [%s] (%s): %s\n",
					r.CreatedAt.Format("2006-01-02 15:04"), r.SessionID[:8], r.Role, r.Preview)
			}
			return nil
		},
	}
}

func doctorCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and capabilities",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Lumen Doctor")
			fmt.Println("============")

			if history.CheckFTS() {
				fmt.Println("✅ SQLite FTS5   : Enabled (search available)")
			} else {
				fmt.Println("❌ SQLite FTS5   : Disabled")
				fmt.Println("   -> FIX: Build with '-tags sqlite_fts5'")
			}

			configPath := filepath.Join(configHome(), "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				fmt.Printf("✅ Configuration : Found (%s)\n", configPath)
			} else {
				fmt.Printf("⚠️  Configuration : Missing (%s)\n", configPath)
			}

			keys := resolveKeys(cfg)
			for _, p := range registry.Providers() {
				name := p.Name
				if name == "" {
					name = p.ID
				}
				if _, ok := keys[p.ID]; ok {
					fmt.Printf("✅ %-14s : Key configured\n", name)
				} else {
					fmt.Printf("⚠️  %-14s : No key (config api_keys.%s or %s)\n", name, p.ID, keyEnvVars[p.ID])
				}
			}
		},
	}
}
