package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/html2deck/pkg/inspect"
)

// inspectCommand creates the inspect command. It reads the HTML statically
// and needs no browser.
func (c *CLI) inspectCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:               "inspect <file>",
		Short:             "Outline the slides and assets of an HTML deck without rendering it",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeHTML,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			report, err := inspect.File(args[0], cfg.Extract)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func printReport(r *inspect.Report) {
	title := r.Title
	if title == "" {
		title = r.Path
	}
	fmt.Println(StyleTitle.Render(title))
	printKeyValue("File", r.Path)
	printKeyValue("Slides", StyleNumber.Render(fmt.Sprint(len(r.Slides))))
	fmt.Println()

	for _, s := range r.Slides {
		heading := s.Heading
		if heading == "" {
			heading = StyleDim.Render("(no heading)")
		}
		printInfo("%s %s", StyleNumber.Render(fmt.Sprintf("%2d", s.Index+1)), heading)

		regions := "no header or content region"
		switch {
		case s.HasHeader && s.HasContent:
			regions = "header and content"
		case s.HasHeader:
			regions = "header only"
		case s.HasContent:
			regions = "content only"
		}
		printDetail("%s · %s · %s · %s", regions,
			plural(s.Elements, "element"), plural(s.Icons, "icon"), plural(s.CodeBlocks, "code block"))
	}

	if len(r.Assets) == 0 {
		return
	}
	fmt.Println()
	fmt.Println(StyleTitle.Render("Assets"))
	for _, a := range r.Assets {
		if a.Exists {
			printFile(a.Path)
		} else {
			printWarning("%s %s is missing", a.Kind, a.Path)
		}
	}
}
