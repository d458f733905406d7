package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"yashubustudio/ontomap/internal/logging"
	"yashubustudio/ontomap/ontomap"
)

var labelFileExts = []string{".json", ".csv", ".tsv", ".txt"}

func main() {
	fyneApp := app.NewWithID("yashubustudio.ontomap")
	win := fyneApp.NewWindow("Ontology Mapper")
	win.Resize(fyne.NewSize(1100, 760))

	if err := ontomap.LoadEnvFile(""); err != nil {
		showFatalError(win, fmt.Errorf(".env の読み込みに失敗しました: %w", err))
		return
	}
	cfg, err := ontomap.LoadConfig("")
	if err != nil {
		showFatalError(win, fmt.Errorf("設定の読み込みに失敗しました: %w", err))
		return
	}
	if err := ontomap.ApplyEnv(&cfg); err != nil {
		showFatalError(win, fmt.Errorf("環境変数の適用に失敗しました: %w", err))
		return
	}
	if len(cfg.LabelColumns) > 0 {
		ontomap.SetLabelColumns(cfg.LabelColumns)
	}

	logBinding := binding.NewString()
	capture := newLogCapture(logBinding, 300)
	logger := logging.NewWithWriters(cfg.LogLevel, io.MultiWriter(os.Stdout, capture), io.MultiWriter(os.Stderr, capture))

	embedder, err := ontomap.NewOrtEmbedder(cfg.Embedder)
	if err != nil {
		logger.Error("%v", err)
		showFatalError(win, fmt.Errorf("埋め込みエンジンの初期化に失敗しました: %w", err))
		return
	}
	mapper, err := ontomap.NewMapper(embedder, logger)
	if err != nil {
		embedder.Close()
		showFatalError(win, fmt.Errorf("マッパーの初期化に失敗しました: %w", err))
		return
	}
	defer mapper.Close()

	ctx := context.Background()
	var cfgMu sync.Mutex
	saveConfig := func() {
		cfgMu.Lock()
		defer cfgMu.Unlock()
		if err := ontomap.SaveConfig("", cfg); err != nil {
			logger.Error("設定の保存に失敗しました: %v", err)
		}
	}

	sourceEntry := widget.NewEntry()
	sourceEntry.SetPlaceHolder("assets/source_ontology_labels.json")
	targetEntry := widget.NewEntry()
	targetEntry.SetPlaceHolder("assets/target_schema_ontology.json")
	outputEntry := widget.NewEntry()
	outputEntry.SetText("output/output.json")

	openPicker := func(entry *widget.Entry) func() {
		return func() {
			fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
				if err != nil {
					showError(win, err)
					return
				}
				if rc == nil {
					return
				}
				defer rc.Close()
				entry.SetText(rc.URI().Path())
			}, win)
			fd.SetFilter(storageFilter(labelFileExts))
			fd.Show()
		}
	}
	outputPicker := func() {
		fd := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				showError(win, err)
				return
			}
			if uc == nil {
				return
			}
			defer uc.Close()
			outputEntry.SetText(uc.URI().Path())
		}, win)
		fd.SetFileName("output.json")
		fd.SetFilter(storageFilter([]string{".json"}))
		fd.Show()
	}

	thresholdLabel := widget.NewLabel(fmt.Sprintf("閾値: %.2f", cfg.Threshold))
	thresholdSlider := widget.NewSlider(0, 1)
	thresholdSlider.Step = 0.01
	thresholdSlider.SetValue(cfg.Threshold)
	thresholdSlider.OnChanged = func(v float64) {
		thresholdLabel.SetText(fmt.Sprintf("閾値: %.2f", v))
		cfgMu.Lock()
		cfg.Threshold = v
		cfgMu.Unlock()
	}
	thresholdSlider.OnChangeEnded = func(float64) { saveConfig() }

	statusLabel := widget.NewLabel("準備完了")

	var tableMu sync.Mutex
	var tableData [][]string
	resultTable := widget.NewTable(
		func() (int, int) {
			tableMu.Lock()
			defer tableMu.Unlock()
			if len(tableData) == 0 {
				return 0, 0
			}
			return len(tableData), len(tableData[0])
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			tableMu.Lock()
			defer tableMu.Unlock()
			if id.Row >= len(tableData) || id.Col >= len(tableData[id.Row]) {
				return
			}
			label := obj.(*widget.Label)
			label.SetText(tableData[id.Row][id.Col])
			if id.Row == 0 {
				label.TextStyle = fyne.TextStyle{Bold: true}
			} else {
				label.TextStyle = fyne.TextStyle{}
			}
		},
	)
	for col, width := range []float32{240, 220, 220, 80} {
		resultTable.SetColumnWidth(col, width)
	}

	reportView := widget.NewMultiLineEntry()
	reportView.Wrapping = fyne.TextWrapOff
	reportView.TextStyle = fyne.TextStyle{Monospace: true}

	var runBtn *widget.Button
	runBtn = widget.NewButton("マッピング実行", func() {
		cfgMu.Lock()
		job := ontomap.Job{
			SourcePath: strings.TrimSpace(sourceEntry.Text),
			TargetPath: strings.TrimSpace(targetEntry.Text),
			OutputPath: strings.TrimSpace(outputEntry.Text),
			ReportPath: cfg.ReportPath,
			Threshold:  cfg.Threshold,
			Labels:     ontomap.LabelParseOptions{Column: cfg.LabelColumn},
		}
		cfgMu.Unlock()
		if job.SourcePath == "" || job.TargetPath == "" || job.OutputPath == "" {
			showError(win, fmt.Errorf("入力・ターゲット・出力ファイルを指定してください"))
			return
		}
		runBtn.Disable()
		statusLabel.SetText("推論中...")
		go func() {
			start := time.Now()
			res, err := mapper.Run(ctx, job)
			elapsed := time.Since(start)
			if err != nil {
				logger.Error("%v", err)
				fyne.CurrentApp().Driver().CallOnMainThread(func() {
					runBtn.Enable()
					statusLabel.SetText("エラーが発生しました")
					showError(win, err)
				})
				return
			}
			report, err := os.ReadFile(res.ReportPath)
			if err != nil {
				logger.Error("レポートの読み込みに失敗しました: %v", err)
			}
			tableMu.Lock()
			tableData = buildTableData(res.Mapping)
			tableMu.Unlock()
			fyne.CurrentApp().Driver().CallOnMainThread(func() {
				resultTable.Refresh()
				reportView.SetText(string(report))
				runBtn.Enable()
				statusLabel.SetText(fmt.Sprintf("%d件 (成功 %s%%) %.2fs",
					res.Mapping.Len(), formatPercent(res.Summary.SuccessPercentage), elapsed.Seconds()))
			})
		}()
	})

	logLabel := widget.NewLabelWithData(logBinding)
	logLabel.Wrapping = fyne.TextWrapWord
	logContainer := container.NewVScroll(logLabel)
	logContainer.SetMinSize(fyne.NewSize(200, 120))

	fileRow := func(title string, entry *widget.Entry, pick func()) fyne.CanvasObject {
		return container.NewBorder(nil, nil, widget.NewLabel(title), widget.NewButton("参照", pick), entry)
	}
	controls := container.NewVBox(
		fileRow("ソース", sourceEntry, openPicker(sourceEntry)),
		fileRow("ターゲット", targetEntry, openPicker(targetEntry)),
		fileRow("出力", outputEntry, outputPicker),
		container.NewBorder(nil, nil, thresholdLabel, nil, thresholdSlider),
		container.NewHBox(runBtn, statusLabel),
		widget.NewSeparator(),
		widget.NewLabel("ログ"),
		logContainer,
	)

	tabs := container.NewAppTabs(
		container.NewTabItem("結果", resultTable),
		container.NewTabItem("レポート", reportView),
	)
	root := container.NewHSplit(controls, tabs)
	root.Offset = 0.35
	win.SetContent(root)

	win.ShowAndRun()
}

func showFatalError(win fyne.Window, err error) {
	content := widget.NewLabel(err.Error())
	win.SetContent(content)
	dialog.ShowError(err, win)
	win.ShowAndRun()
}

func showError(win fyne.Window, err error) {
	if err != nil {
		dialog.ShowError(err, win)
	}
}

func storageFilter(exts []string) fyne.FileFilter {
	return storage.NewExtensionFileFilter(exts)
}
