package cli

import (
	"fmt"

	"github.com/linapoint/resortagents/internal/agents"
	"github.com/linapoint/resortagents/internal/cli/formatter"
	"github.com/linapoint/resortagents/internal/domain"
	"github.com/spf13/cobra"
)

// newMagicCmd previews a magic content item without saving or delivering it.
func newMagicCmd(rt *Runtime) *cobra.Command {
	var (
		answers     magicAnswers
		contentType string
	)

	cmd := &cobra.Command{
		Use:   "magic",
		Short: "Compose a personalized song or video for a guest",
		RunE: func(cmd *cobra.Command, args []string) error {
			if answers.Recipient == "" && rt.interactive() {
				if err := magicForm(&answers).Run(); err != nil {
					return err
				}
			}

			if !domain.ValidContentTypes[contentType] {
				return fmt.Errorf("unknown --type %q: want song, video or audio_remix", contentType)
			}

			stop := func() {}
			if rt.interactive() {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "composing")
			}
			res, err := rt.App.Content.Generate(cmd.Context(), agents.ContentRequest{
				Type:          domain.ContentType(contentType),
				Questionnaire: answers.questionnaire(),
			})
			stop()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGeneratedContent(res, rt.Config.Agents.MinScore))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&answers.Recipient, "recipient", "", "Recipient name (prompts when empty on a terminal)")
	f.StringVar(&answers.From, "from", "", "Who the gift is from")
	f.StringVar(&answers.Occasion, "occasion", "", "birthday, anniversary, reunion, proposal or celebration")
	f.StringVar(&answers.Mood, "mood", "", "romantic, energetic, peaceful or celebratory")
	f.StringVar(&answers.Style, "style", "", "tropical, reggae, calypso or ambient")
	f.StringVar(&answers.Memories, "memories", "", "Comma separated key memories")
	f.StringVar(&answers.Message, "message", "", "Personal message to weave in")
	f.StringVar(&contentType, "type", string(domain.ContentSong), "song, video or audio_remix")
	return cmd
}
