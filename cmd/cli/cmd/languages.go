package cmd

import (
	"fmt"
	"strings"

	"github.com/angelospk/subfetch/pkg/core/language"
	"github.com/spf13/cobra"
)

var languagesCmd = &cobra.Command{
	Use:   "languages [name-or-code...]",
	Short: "Show how language names map to OpenSubtitles codes",
	Long: `Without arguments, lists the languages whose OpenSubtitles code is regional.
With arguments, resolves each display name to a code, or each code to a
display name.`,
	Annotations: map[string]string{noAPIKeyAnnotation: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		mapper := language.NewMapper(nil)

		var rows [][]string
		if len(args) == 0 {
			names := language.StaticNames()
			for i, code := range language.StaticCodes() {
				rows = append(rows, []string{names[i], code})
			}
		}
		for _, arg := range args {
			rows = append(rows, resolveLanguage(mapper, arg))
		}

		fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Name", "Code"}, rows, nil))
		return nil
	},
}

// resolveLanguage treats short arguments as codes and the rest as names.
func resolveLanguage(mapper *language.Mapper, arg string) []string {
	arg = strings.TrimSpace(arg)
	if len(arg) <= 5 {
		if name, ok := mapper.ToDisplayName(arg); ok {
			return []string{name, strings.ToLower(arg)}
		}
	}
	if code, ok := mapper.ToCode(arg); ok {
		return []string{arg, code}
	}
	return []string{arg, "?"}
}

func init() {
	RootCmd.AddCommand(languagesCmd)
}
