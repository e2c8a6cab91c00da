package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/speedlearn/internal/speed"
	"github.com/abhisek/speedlearn/internal/ui/theme"
)

var speedsCmd = &cobra.Command{
	Use:   "speeds",
	Short: "Show the learning speed profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		plain, _ := cmd.Flags().GetBool("plain")
		out := cmd.OutOrStdout()

		for _, p := range speed.All() {
			th := theme.ForSpeed(p.Speed, plain)
			c := p.Characteristics
			fmt.Fprintln(out, th.Title.Render(fmt.Sprintf("%d  %s", p.Speed, p.Name)))
			fmt.Fprintf(out, "   modes       %s, %s, %s\n", p.Primary, p.Secondary, p.Tertiary)
			fmt.Fprintf(out, "   content     %s chunks · %s visuals · %s pacing · %s repetition\n",
				c.ContentChunking, c.VisualSupport, c.Pacing, c.Repetition)
			fmt.Fprintf(out, "   difficulty  %.1f · %s complexity · %s navigation\n",
				speed.BaseDifficulty(p.Speed), c.Complexity, c.Navigation)
			fmt.Fprintf(out, "   ui          %s font · %s layout · %s animations · %s colours\n",
				p.UI.FontSize, p.UI.Layout, p.UI.Animations, p.UI.Colors)
			fmt.Fprintf(out, "   elements    %s\n\n", th.Subtitle.Render(strings.Join(p.UIElements, ", ")))
		}
		return nil
	},
}
