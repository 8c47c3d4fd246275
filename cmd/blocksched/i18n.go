// Package main provides localization for the blocksched CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Draw festival block schedules": "フェスティバルのタイムテーブルを描画",

		// Version command
		"blocksched version %s": "blocksched バージョン %s",

		// Errors
		"No dataset given. Pass a file or URL, or set dataset in the config file.": "データセットが指定されていません。ファイルかURLを渡すか、設定ファイルで dataset を指定してください。",

		// List tables
		"Days":   "日程",
		"Stages": "ステージ",
		"Name":   "名前",
		"Date":   "日付",
		"Range":  "時間帯",
		"Colour": "色",
		"Events": "イベント",

		// Programme content
		"Programme":    "プログラム",
		"Time":         "時間",
		"Stage":        "ステージ",
		"Event":        "イベント",
		"No events":    "イベントはありません",
		"Generated at": "生成日時",
		"from":         "データ元",
	})
}
