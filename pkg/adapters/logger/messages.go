package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Loading dataset from %s":              "データセットを %s から読み込み中",
		"Loaded %d days and %d stages":         "%d 日分、%d ステージを読み込みました",
		"Building layouts":                     "レイアウトを構築中",
		"Built %d stage layouts":               "%d 個のステージレイアウトを構築しました",
		"Rendering %s for %s":                  "%s を %s 向けに描画中",
		"Output saved to %s":                   "出力を %s に保存しました",
		"Pipeline completed successfully":      "パイプラインが正常に完了しました",
		"Interrupted, shutting down...":        "中断されました。シャットダウン中...",
		"Listening on %s":                      "%s で待ち受け中",
		"Dataset changed, reloading":           "データセットが変更されました。再読み込みします",
		"Dataset reloaded: %d days, %d stages": "データセットを再読み込みしました: %d 日分、%d ステージ",
		"Using cached dataset for %s":          "%s のキャッシュ済みデータセットを使用します",
		"Wrote %d events to %s":                "%d 件のイベントを %s に書き出しました",

		// Controller
		"Ignoring persisted day %q":           "保存された日 %q を無視します",
		"Ignoring persisted stages %q: %v":    "保存されたステージ %q を無視します: %v",
		"Dropping persisted stage %q":         "保存されたステージ %q を破棄します",
		"Ignoring persisted scroll offset %q": "保存されたスクロール位置 %q を無視します",
		"Ignoring unknown day %q":             "不明な日 %q を無視します",
		"Ignoring unknown stage %q":           "不明なステージ %q を無視します",

		// Layout
		"Stage %s has invalid colour %q, using fallback": "ステージ %s の色 %q が不正です。既定色を使用します",

		// Errors
		"Reload failed: %v":              "再読み込みに失敗しました: %v",
		"Failed to persist %s: %v":       "%s の保存に失敗しました: %v",
		"Jump to now failed: %v":         "現在時刻への移動に失敗しました: %v",
		"Failed to write output: %s":     "出力の書き込みに失敗しました: %s",
		"Failed to load dataset: %s":     "データセットの読み込みに失敗しました: %s",
		"Invalid selection: %s":          "選択が不正です: %s",
		"Failed to build layouts: %s":    "レイアウトの構築に失敗しました: %s",
		"Failed to compose schedule: %s": "スケジュールの合成に失敗しました: %s",
		"Failed to encode schedule: %s":  "スケジュールのエンコードに失敗しました: %s",
		"Request failed: %v":             "リクエストに失敗しました: %v",
		"Failed to cache dataset: %v":    "データセットのキャッシュに失敗しました: %v",
	})
}
