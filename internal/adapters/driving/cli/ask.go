package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
)

var (
	askContext string
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question",
	Long: `Routes the question to the matching agents and prints the merged answer.

Examples:
  sercha-agents ask "What does this PDF say about encryption?"
  sercha-agents ask "Find recent papers on diffusion models"
  sercha-agents ask --context "ISO 27001" "What's in the news today?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

type agentOutput struct {
	Name      string `json:"name"`
	Rationale string `json:"rationale"`
}

type answerOutput struct {
	Answer    string              `json:"answer"`
	Agents    []agentOutput       `json:"agents"`
	Documents []domain.ResultItem `json:"documents"`
	Errors    map[string]string   `json:"errors,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

func init() {
	askCmd.Flags().StringVarP(&askContext, "context", "c", "", "background used for retrieval and synthesis")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}

	q := domain.Question{Text: strings.Join(args, " "), Context: askContext}
	answer, err := svc.Ask.Ask(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(toAnswerOutput(answer), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printAnswer(cmd, answer)
	return nil
}

func printAnswer(cmd *cobra.Command, answer *domain.FinalAnswer) {
	cmd.Println(answer.Answer)
	cmd.Println()

	cmd.Println("Agents:")
	for _, id := range answer.Decision.Agents {
		cmd.Printf("  %s - %s\n", id.DisplayName(), answer.Decision.Rationale[id])
	}
	for _, r := range answer.Results {
		if r.Failed() {
			cmd.Printf("  ! %s failed: %v\n", r.ProviderID.DisplayName(), r.Err)
		}
	}

	if len(answer.Items) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for i, item := range answer.Items {
		ref := item.SourceRef
		if ref == "" {
			ref = item.ID
		}
		cmd.Printf("  [%d] %s\n", i+1, item.Title)
		cmd.Printf("      %s\n", ref)
	}
}

func toAnswerOutput(answer *domain.FinalAnswer) answerOutput {
	out := answerOutput{
		Answer:    answer.Answer,
		Agents:    make([]agentOutput, 0, len(answer.Decision.Agents)),
		Documents: answer.Items,
		Timestamp: answer.Timestamp,
	}
	if out.Documents == nil {
		out.Documents = []domain.ResultItem{}
	}
	for _, id := range answer.Decision.Agents {
		out.Agents = append(out.Agents, agentOutput{Name: string(id), Rationale: answer.Decision.Rationale[id]})
	}
	for _, r := range answer.Results {
		if r.Failed() {
			if out.Errors == nil {
				out.Errors = make(map[string]string)
			}
			out.Errors[string(r.ProviderID)] = r.Err.Error()
		}
	}
	return out
}
