package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Run level messages (info)
		"Loaded config from %s":         "設定ファイル %s を読み込みました",
		"Rendering %d frames":           "%d フレームをレンダリング中",
		"Finished %d frames in %s":      "%d フレームを %s で完了しました",
		"Interrupted, shutting down...": "中断されました。シャットダウン中...",
		"Summary written to %s":         "サマリーを %s に書き出しました",
		"Metrics written to %s":         "メトリクスを %s に書き出しました",

		// Sinks
		"Encoding %dx%d at %s fps to %s":     "%dx%d %s fps で %s にエンコード中",
		"Encoding %dx%d at %s fps to stdout": "%dx%d %s fps で標準出力にエンコード中",
		"Previewing %dx%d at %s fps":         "%dx%d %s fps でプレビュー中",

		// Verification
		"Verified %s: %s %dx%d, %d samples, %s": "%s を検証しました: %s %dx%d, %d サンプル, %s",

		// Pipeline (debug)
		"Started %s (pid %d): %s":        "%s を起動しました (pid %d): %s",
		"Consumer closed its input: %v":  "受信側が入力を閉じました: %v",
		"Processes exited with codes %v": "プロセスが終了コード %v で終了しました",
		"Rendered frame %d/%d":           "フレームをレンダリングしました %d/%d",

		// Warnings
		"Consumer stopped after %d frames":   "受信側が %d フレーム後に停止しました",
		"Interrupted after %d frames":        "%d フレーム後に中断されました",
		"Processes exited with code %d":      "プロセスが終了コード %d で終了しました",
		"Failed to signal %s: %v":            "%s へのシグナル送信に失敗しました: %v",
		"%s did not exit within %s, killing": "%s が %s 以内に終了しないため強制終了します",

		// Errors
		"Failed to start %s: %s":      "%s の起動に失敗しました: %s",
		"Failed to kill %s: %v":       "%s の強制終了に失敗しました: %v",
		"Render failed: %v":           "レンダリングに失敗しました: %v",
		"Verification failed: %v":     "検証に失敗しました: %v",
		"Failed to write summary: %v": "サマリーの書き出しに失敗しました: %v",
		"Failed to write metrics: %v": "メトリクスの書き出しに失敗しました: %v",
	})
}
