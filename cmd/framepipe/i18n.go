// Package main provides localization for the framepipe CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Commands
		"Stream rendered frames into ffmpeg and ffplay":                          "レンダリングしたフレームを ffmpeg と ffplay に流し込む",
		"Render the test pattern into a video file, a preview window or nowhere": "テストパターンを動画ファイル、プレビュー、または破棄先へレンダリング",
		"Print the commands that render would run":                               "render が実行するコマンドを表示",
		"Show codec, size and duration of an MP4 file":                           "MP4ファイルのコーデック、サイズ、再生時間を表示",

		// Flag categories
		"Output":      "出力先",
		"Render":      "レンダリング",
		"Audio":       "音声",
		"Encoding":    "エンコード",
		"Diagnostics": "診断",
		"Logging":     "ログ",

		// Flags
		"Config file (.yaml, .yml or .toml)":                                "設定ファイル（.yaml, .yml, .toml）",
		"Output file path (- for stdout)":                                   "出力ファイルパス（- で標準出力）",
		"Play the stream in ffplay instead of writing a file":               "ファイルに書き込まず ffplay で再生",
		"Discard frames without starting any process":                       "プロセスを起動せずにフレームを破棄",
		"Frame width in pixels (default: 1280)":                             "フレームの幅（ピクセル、デフォルト: 1280）",
		"Frame height in pixels (default: 720)":                             "フレームの高さ（ピクセル、デフォルト: 720）",
		"Frame rate: 30, 29.97 or 30000/1001 (default: 60)":                 "フレームレート: 30, 29.97, 30000/1001（デフォルト: 60）",
		"Number of frames to render (default: 300)":                         "レンダリングするフレーム数（デフォルト: 300）",
		"Caption drawn on every frame":                                      "各フレームに描画するキャプション",
		"Audio file muxed into the output":                                  "出力に多重化する音声ファイル",
		"Audio start offset in seconds":                                     "音声の開始位置（秒）",
		"Audio end time in seconds":                                         "音声の終了位置（秒）",
		"ffmpeg video encoding arguments":                                   "ffmpeg の映像エンコード引数",
		"ffmpeg audio encoding arguments":                                   "ffmpeg の音声エンコード引数",
		"Extra ffmpeg arguments placed before the output":                   "出力の直前に追加する ffmpeg 引数",
		"Path to ffmpeg (falls back to FFMPEG_PATH env, then PATH)":         "ffmpeg のパス（未指定時は FFMPEG_PATH 環境変数、次に PATH）",
		"Path to ffplay (falls back to FFPLAY_PATH env, then PATH)":         "ffplay のパス（未指定時は FFPLAY_PATH 環境変数、次に PATH）",
		"Probe the written MP4 file after rendering":                        "レンダリング後に出力MP4ファイルを検査",
		"Write a render summary to this file (Markdown, or JSON for .json)": "レンダリングサマリーをファイルに出力（Markdown、.json なら JSON）",
		"Write Prometheus metrics in textfile format":                       "Prometheus メトリクスを textfile 形式で出力",
		"Log level (debug, info, warn, error)":                              "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                                           "全てのログ出力を抑制",

		// Runtime messages
		"Interrupted":                        "中断されました",
		"The null output runs no processes":  "null 出力はプロセスを起動しません",
		"inspect needs exactly one MP4 file": "inspect にはMP4ファイルを1つだけ指定してください",
		"Processes exited with code %d":      "プロセスが終了コード %d で終了しました",

		// Summary content
		"Render Summary":      "レンダリングサマリー",
		"Settings":            "設定",
		"Commands":            "コマンド",
		"Result":              "実行結果",
		"Video":               "動画詳細",
		"Item":                "項目",
		"Value":               "値",
		"Destination":         "出力先パス",
		"Frame Size":          "フレームサイズ",
		"Frame Rate":          "フレームレート",
		"Frames":              "フレーム数",
		"None":                "なし",
		"Frames Written":      "書き込みフレーム数",
		"Elapsed":             "経過時間",
		"Exit Codes":          "終了コード",
		"Unknown":             "不明",
		"Status":              "状態",
		"Failed":              "失敗",
		"Stopped by consumer": "受信側により停止",
		"Completed":           "完了",
		"Codec":               "コーデック",
		"Video Size":          "動画サイズ",
		"Samples":             "サンプル数",
		"Duration":            "再生時間",
		"File Size":           "ファイルサイズ",
		"Fragmented":          "フラグメント化",
		"Audio Track":         "音声トラック",
		"Yes":                 "あり",
		"No":                  "なし",
		"Generated at":        "生成日時",
	})
}
