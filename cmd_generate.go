package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xiaot623/gogo/vizstudio/internal/service"
)

var (
	genPrompt      string
	genAspectRatio string
	genImageSize   string
	genNoContext   bool
	genContext     string
	genReference   string
	genEdit        string
	genOutDir      string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render a single image from a prompt",
	Example: `  vizstudio generate --prompt "Aerial view of the hatchery at dusk" --aspect-ratio 21:9
  vizstudio generate --prompt "Add solar panels to the roof" --edit previous.png
  vizstudio generate --prompt "Render this layout" --reference /blueprints/site-plan.png`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if genPrompt == "" {
			return errors.New("--prompt is required")
		}
		key, err := resolveAPIKey()
		if err != nil {
			return err
		}
		edit, err := imageRef(genEdit)
		if err != nil {
			return err
		}
		reference, err := imageRef(genReference)
		if err != nil {
			return err
		}

		include := !genNoContext
		in := service.GenerateInput{
			Prompt:         genPrompt,
			APIKey:         key,
			IncludeContext: &include,
			CustomContext:  genContext,
			AspectRatio:    genAspectRatio,
			ImageSize:      genImageSize,
			EditImage:      edit,
			ReferenceImage: reference,
		}

		res, err := newStudioClient().Generate(cmd.Context(), in)
		if err != nil {
			return err
		}
		path, err := writeImage(res.Image, genOutDir, res.ID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if res.Text != "" {
			fmt.Fprintln(out, res.Text)
		}
		fmt.Fprintf(out, "Saved %s\n", path)
		return nil
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genPrompt, "prompt", "p", "", "image prompt")
	f.StringVar(&genAspectRatio, "aspect-ratio", service.DefaultAspectRatio, "aspect ratio")
	f.StringVar(&genImageSize, "image-size", service.DefaultImageSize, "image size (1K, 2K, 4K)")
	f.BoolVar(&genNoContext, "no-context", false, "do not prepend the facility specs")
	f.StringVar(&genContext, "context", "", "context to prepend instead of the session facility specs")
	f.StringVar(&genReference, "reference", "", "blueprint reference image (file, URL or data URL)")
	f.StringVar(&genEdit, "edit", "", "image to edit (file or data URL)")
	f.StringVarP(&genOutDir, "out", "o", ".", "output directory")
}
