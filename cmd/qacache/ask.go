package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	chiTransport "github.com/kailas-cloud/qacache/internal/transport/chi"
	answeruc "github.com/kailas-cloud/qacache/internal/usecase/answer"
)

type askOptions struct {
	forceNew bool
	session  string
	asJSON   bool
}

func newAskCmd(root *rootOptions) *cobra.Command {
	opts := &askOptions{}

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer one question through the cache",
		Long: `Runs a single question through the same pipeline as POST /ask:
bypass check, semantic lookup, generation on a miss, and storage of the new answer.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			a, err := buildApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			session := opts.session
			if session == "" {
				session = uuid.NewString()
			}

			ans := a.answers.Handle(cmd.Context(), answeruc.Query{
				Question: strings.Join(args, " "),
				ForceNew: opts.forceNew,
			}, session)

			if opts.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(chiTransport.AskResponse{
					Answer:          ans.Text,
					MatchPercent:    ans.MatchPercent,
					MatchedQuestion: ans.MatchedQuestion,
					Timestamp:       ans.Timestamp,
					FromMemory:      ans.FromMemory,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ans.Text)
			if ans.FromMemory {
				fmt.Fprintf(out, "(from memory, %.2f%% match with %q, %s)\n",
					ans.MatchPercent, *ans.MatchedQuestion, ans.Timestamp)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.forceNew, "force-new", false, "skip the cache lookup")
	cmd.Flags().StringVar(&opts.session, "session", "", "session id for conversational mode")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the answer as JSON")
	return cmd
}
