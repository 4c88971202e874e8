package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/profswitch/host/pkg/profiles"
	"github.com/spf13/cobra"
)

var (
	profilesEmail string
	profilesJSON  bool
)

// profilesCmd lists profiles outside the framed protocol, for operators
// checking what the extension would see.
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List browser profiles as the extension would see them",
	Long: `Reads the browser's Local State registry and prints the profile records
the get-profiles action would return, without speaking the native
messaging protocol. Useful for checking a host installation.`,
	RunE: runProfiles,
}

var (
	swatchStyle = lipgloss.NewStyle().SetString("●")
	nameStyle   = lipgloss.NewStyle().Bold(true)
	dirStyle    = lipgloss.NewStyle().Faint(true)
	markStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// runProfiles prints the profile list to stdout
func runProfiles(cmd *cobra.Command, args []string) error {
	if err := initLogger(); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store := profiles.NewStore(cfg.Browser, rootLog)
	list, err := store.List(profilesEmail)
	if err != nil {
		return err
	}

	if profilesJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	for i, p := range list.Profiles {
		swatch := swatchStyle
		if p.HighlightColor != nil {
			swatch = swatch.Foreground(lipgloss.Color(*p.HighlightColor))
		}

		line := fmt.Sprintf("%s %s %s",
			swatch.Render(),
			nameStyle.Render(p.Name),
			dirStyle.Render("("+p.Directory+")"))
		if p.Email != "" {
			line += " " + dirStyle.Render(p.Email)
		}
		if list.CurrentIndex != nil && *list.CurrentIndex == i {
			line += " " + markStyle.Render("← current")
		}
		fmt.Println(line)
	}
	return nil
}

func init() {
	profilesCmd.Flags().StringVar(&profilesEmail, "email", "",
		"Account email to mark as the current profile")
	profilesCmd.Flags().BoolVar(&profilesJSON, "json", false,
		"Print the raw JSON records instead of the styled list")

	rootCmd.AddCommand(profilesCmd)
}
