package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/hicap-oss/parley/internal/cache"
	"github.com/hicap-oss/parley/internal/client"
	"github.com/hicap-oss/parley/internal/proto"
)

//nolint:gochecknoglobals
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		handleError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		flagModel    string
		flagSystem   string
		flagEndpoint string
		flagSettings bool
		flagContinue string
		flagTitle    string
		flagList     bool
		flagDelete   string
		flagNoSave   bool
	)

	cmd := &cobra.Command{
		Use:           "parley",
		Short:         "Chat with language models from your terminal.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("model") {
				cfg.Model = flagModel
			}
			if cmd.Flags().Changed("system") {
				cfg.System = flagSystem
			}
			if cmd.Flags().Changed("endpoint") {
				cfg.Endpoint = flagEndpoint
			}
			cfg.Settings = flagSettings
			cfg.Continue = flagContinue
			cfg.Title = flagTitle
			cfg.List = flagList
			cfg.Delete = flagDelete
			cfg.NoSave = flagNoSave
			return run(cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&flagModel, "model", "m", "", help["model"])
	flags.StringVarP(&flagSystem, "system", "s", "", help["system"])
	flags.StringVar(&flagEndpoint, "endpoint", "", help["endpoint"])
	flags.BoolVarP(&flagSettings, "settings", "S", false, help["settings"])
	flags.StringVarP(&flagContinue, "continue", "c", "", help["continue"])
	flags.Lookup("continue").NoOptDefVal = "HEAD"
	flags.StringVarP(&flagTitle, "title", "t", "", help["title"])
	flags.BoolVarP(&flagList, "list", "l", false, help["list"])
	flags.StringVar(&flagDelete, "delete", "", help["delete"])
	flags.BoolVar(&flagNoSave, "no-save", false, help["no-save"])

	cmd.SetUsageFunc(usageFunc)
	cmd.AddCommand(newServeCmd())
	return cmd
}

func usageFunc(cmd *cobra.Command) error {
	s := stdoutStyles()
	fmt.Printf(
		"Usage:\n  %s %s\n\n",
		s.AppName.Render(cmd.CommandPath()),
		s.CliArgs.Render("[flags]"),
	)
	if cmd.HasAvailableSubCommands() {
		fmt.Println("Commands:")
		for _, sub := range cmd.Commands() {
			fmt.Printf(
				"  %-44s %s\n",
				s.Flag.Render(sub.Name()),
				s.FlagDesc.Render(sub.Short),
			)
		}
		fmt.Println()
	}
	fmt.Println("Flags:")
	cmd.Flags().VisitAll(func(f *flag.Flag) {
		if f.Shorthand == "" {
			fmt.Printf(
				"  %-44s %s\n",
				s.Flag.Render("--"+f.Name),
				s.FlagDesc.Render(f.Usage),
			)
		} else {
			fmt.Printf(
				"  %s%s %-40s %s\n",
				s.Flag.Render("-"+f.Shorthand),
				s.FlagComma,
				s.Flag.Render("--"+f.Name),
				s.FlagDesc.Render(f.Usage),
			)
		}
	})
	return nil
}

func run(cfg Config) error {
	if cfg.Settings {
		return openSettings(cfg)
	}

	db, err := openDB(filepath.Join(cfg.CachePath, "parley.db"))
	if err != nil {
		return parleyError{err, "Could not open the conversation index."}
	}
	defer db.Close() //nolint:errcheck

	convos, err := cache.NewConversations(cfg.CachePath)
	if err != nil {
		return parleyError{err, "Could not open the conversation cache."}
	}

	switch {
	case cfg.List:
		return listConversations(db)
	case cfg.Delete != "":
		return deleteConversation(db, convos, cfg.Delete)
	}

	if !isInputTTY() {
		return newUserErrorf("the chat needs an interactive terminal; pipe-friendly use is not supported")
	}

	convoID := ""
	var messages []proto.Message
	if cfg.Continue != "" {
		convoID, messages, err = continueConversation(db, convos, cfg.Continue)
		if err != nil {
			return err
		}
	}

	chat := newChat(cfg, client.New(client.Config{Endpoint: cfg.Endpoint}), messages)
	p := tea.NewProgram(chat, tea.WithAltScreen())
	res, err := p.Run()
	if err != nil {
		return parleyError{err, "Could not run the chat."}
	}
	chat = res.(*Chat) //nolint:errcheck

	if cfg.NoSave {
		return nil
	}
	return saveConversation(db, convos, cfg, convoID, chat.Messages())
}

func listConversations(db *convoDB) error {
	convos, err := db.List()
	if err != nil {
		return err
	}
	s := stdoutStyles()
	if len(convos) == 0 {
		fmt.Println(s.Comment.Render("No saved conversations."))
		return nil
	}
	for _, convo := range convos {
		fmt.Printf(
			"%s %s %s\n",
			s.SHA1.Render(convo.ID[:convIDShort]),
			convo.Title,
			s.Timeago.Render(convo.UpdatedAt.Format("2006-01-02 15:04")),
		)
	}
	return nil
}

func deleteConversation(db *convoDB, convos *cache.Conversations, in string) error {
	convo, err := db.Find(in)
	if err != nil {
		return parleyError{err, "Could not find the conversation to delete."}
	}
	if err := db.Delete(convo.ID); err != nil {
		return err
	}
	if err := convos.Delete(convo.ID); err != nil && !errors.Is(err, os.ErrNotExist) {
		return parleyError{err, "Could not delete the saved transcript."}
	}
	fmt.Println(stdoutStyles().Comment.Render("Deleted " + convo.ID[:convIDShort] + "."))
	return nil
}

func continueConversation(db *convoDB, convos *cache.Conversations, in string) (string, []proto.Message, error) {
	var (
		convo *dbConvo
		err   error
	)
	if in == "HEAD" {
		convo, err = db.FindHEAD()
	} else {
		convo, err = db.Find(in)
	}
	if err != nil {
		return "", nil, parleyError{err, "Could not find the conversation to continue."}
	}
	var messages []proto.Message
	if err := convos.Read(convo.ID, &messages); err != nil {
		return "", nil, parleyError{err, "Could not load the saved transcript."}
	}
	return convo.ID, messages, nil
}

func saveConversation(db *convoDB, convos *cache.Conversations, cfg Config, convoID string, messages []proto.Message) error {
	if len(messages) == 0 {
		return nil
	}
	if convoID == "" {
		convoID = newConversationID()
	}
	title := cfg.Title
	if title == "" {
		title = firstLine(lastPrompt(messages))
	}
	if title == "" {
		return nil
	}
	if err := db.Save(convoID, title); err != nil {
		return parleyError{err, "Could not save the conversation."}
	}
	if err := convos.Write(convoID, &messages); err != nil {
		return parleyError{err, "Could not save the transcript."}
	}
	fmt.Fprintln(
		os.Stderr,
		stderrStyles().Comment.Render("Conversation saved: ")+
			stderrStyles().SHA1.Render(convoID[:convIDShort])+
			stderrStyles().Comment.Render(" "+title),
	)
	return nil
}

func handleError(err error) {
	s := stderrStyles()
	var pe parleyError
	if errors.As(err, &pe) && pe.reason != "" {
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, s.ErrPadding.Render(s.ErrorHeader.String(), pe.reason))
		fmt.Fprintln(os.Stderr, s.ErrPadding.Render(s.ErrorDetails.Render(err.Error())))
		fmt.Fprintln(os.Stderr)
		return
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, s.ErrPadding.Render(s.ErrorHeader.String(), err.Error()))
	fmt.Fprintln(os.Stderr)
}
