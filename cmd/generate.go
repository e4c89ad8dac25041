package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-chibi-kit/internal/builder"
	"github.com/shouni/go-chibi-kit/internal/config"
	"github.com/shouni/go-chibi-kit/pkg/domain"
)

// generateCmd は、カード画像を生成してローカルに保存するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "ちびキャラのカード画像を生成して保存しますなのだ。",
	Long: `テーマとレア度からプロンプトを組み立て、Gemini で画像を生成するのだ。
--all-rarities を付けると Common から Shiny まで順番に5枚生成するのだよ。`,
	RunE: generateCommand,
}

func init() {
	d := domain.DefaultRequest()
	f := generateCmd.Flags()
	f.StringVarP(&opts.Mode, "mode", "m", string(d.Mode), "生成モード（card / character）なのだ。")
	f.StringVarP(&opts.Theme, "theme", "t", d.Theme, "キャラクターのテーマなのだ。")
	f.StringVarP(&opts.Description, "description", "d", "", "追加の説明文なのだ。")
	f.StringVarP(&opts.Rarity, "rarity", "r", d.Rarity.String(), "レア度なのだ。")
	f.IntVar(&opts.Attack, "attack", *d.Attack, "攻撃力（0-100）なのだ。")
	f.IntVar(&opts.Defense, "defense", *d.Defense, "防御力（0-100）なのだ。")
	f.StringVar(&opts.Size, "size", string(d.Size), "キャラクターのサイズなのだ。")
	f.StringVar(&opts.Height, "height", d.Height, "キャラクターの身長なのだ。")
	f.StringVar(&opts.Reference, "reference-url", "", "画風の参照画像URLなのだ。")
	f.BoolVar(&opts.AllRarities, "all-rarities", false, "全レア度を順番に生成するのだ。")
	f.StringVarP(&opts.OutputDir, "out", "o", config.DefaultOutputDir, "画像の保存先ディレクトリなのだ。")
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg.Options = opts
	appCtx, err := builder.BuildAppContext(ctx, cfg)
	if err != nil {
		return err
	}
	o := appCtx.Options

	req := requestFromOptions(o)
	if err := req.Validate(); err != nil {
		return err
	}
	runners, err := builder.BuildRunners(appCtx)
	if err != nil {
		return err
	}
	saver, err := builder.BuildSaveRunner(appCtx)
	if err != nil {
		return err
	}

	slog.Info("カード生成を開始するのだ！",
		"theme", req.Theme,
		"rarity", req.Rarity,
		"all_rarities", o.AllRarities,
		"image_model", cfg.Kit.ImageModel)

	var results []domain.GenerationResult
	var runErr error
	if o.AllRarities {
		results, runErr = runners.Rarity.Run(ctx, req, nil)
	} else {
		var result domain.GenerationResult
		result, runErr = runners.Single.Run(ctx, req)
		results = []domain.GenerationResult{result}
	}

	paths, err := saver.Run(ctx, results, o.OutputDir)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}

	if runErr != nil {
		return fmt.Errorf("生成に失敗したのだ: %w", runErr)
	}
	if failed := len(results) - len(paths); failed > 0 {
		return fmt.Errorf("%d 件の生成に失敗したのだ: %w", failed, domain.ErrGenerationFailure)
	}
	slog.Info("すべての生成工程が完了したのだ！", "saved", len(paths))
	return nil
}

// requestFromOptions は CLI フラグから生成リクエストを組み立てます。
func requestFromOptions(o config.GenerateOptions) domain.GenerationRequest {
	attack, defense := o.Attack, o.Defense
	mode, ok := domain.ParseMode(o.Mode)
	if !ok {
		// 未知のモードは検証でエラーにするため、そのまま残すのだ
		mode = domain.Mode(o.Mode)
	}
	req := domain.GenerationRequest{
		Mode:         mode,
		Theme:        o.Theme,
		Description:  o.Description,
		Rarity:       domain.Rarity(o.Rarity),
		Size:         domain.Size(o.Size),
		Height:       o.Height,
		ReferenceURL: o.Reference,
	}
	if req.Mode != domain.ModeCharacter {
		req.Attack, req.Defense = &attack, &defense
	}
	return req.Normalize()
}
