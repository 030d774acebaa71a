package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piscinadeentropia/mrquizzer/internal/screen"
	"github.com/piscinadeentropia/mrquizzer/internal/share"
)

var shareCmd = &cobra.Command{
	Use:   "share [whatsapp|twitter|link]",
	Short: "Share the current score or quiz",
	Long: `Share prints the score message for the current quiz. With whatsapp or
twitter it prints a link that opens the platform with the message filled
in. With link it prints a link that opens the quiz itself on the site.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"whatsapp", "twitter", "link"},
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		sess, err := rt.viewSession(cmd.Context())
		if err != nil {
			return err
		}
		site := rt.cfg.Share.SiteURL
		pct := sess.Results().Percent

		var text string
		switch {
		case len(args) == 0:
			text = share.ScoreText(pct, site)
		case strings.EqualFold(args[0], "link"):
			text = share.TestLink(site, sess.Quiz().Raw)
		default:
			platform, err := share.ParsePlatform(args[0])
			if err != nil {
				return err
			}
			if text, err = share.PlatformURL(platform, share.ScoreText(pct, site)); err != nil {
				return err
			}
		}

		if copyIt, _ := cmd.Flags().GetBool("copy"); copyIt {
			if err := (screen.SystemClipboard{}).WriteAll(text); err != nil {
				return fmt.Errorf("copy: %w", err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Copied to clipboard.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	shareCmd.Flags().Bool("copy", false, "Copy to the clipboard instead of printing")
}
