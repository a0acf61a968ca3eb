package main

import (
	"bufio"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// lineFilter 回傳 false 代表丟棄該行
type lineFilter func(line string) bool

// step 執行一個 go 子指令，stdout/stderr 合併後逐行著色輸出
func step(filter lineFilter, args ...string) error {
	PrintBlue("$ go " + strings.Join(args, " "))
	cmd := exec.Command("go", args...)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	// 等同 2>&1，編譯錯誤在 stderr
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return err
	}
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		line := sc.Text()
		if filter != nil && !filter(line) {
			continue
		}
		switch {
		case strings.HasPrefix(line, "ok"), strings.HasPrefix(line, "PASS"):
			PrintGreen(line)
		case strings.HasPrefix(line, "FAIL"), strings.HasPrefix(line, "--- FAIL"):
			PrintRed(line)
		default:
			fmt.Println(line)
		}
	}
	if err := sc.Err(); err != nil {
		PrintRed(fmt.Sprintf("scanner error: %v", err))
	}
	return cmd.Wait()
}

func cleanCache() {
	// clean 失敗不中斷
	if err := exec.Command("go", "clean", "-testcache").Run(); err != nil {
		PrintYellow(err.Error())
	}
}

func runTest() error {
	PrintGreen("running tests")
	cleanCache()
	return step(func(line string) bool {
		return strings.HasPrefix(line, "ok") ||
			strings.HasPrefix(line, "FAIL") ||
			strings.Contains(line, "build failed") ||
			strings.Contains(line, "setup failed")
	}, "test", "./...", "-cover", "-count=1")
}

func runTestDetail() error {
	PrintGreen("running tests (detail)")
	cleanCache()
	return step(func(line string) bool {
		return !strings.Contains(line, "[no test files]")
	}, "test", "./...", "-v", "-count=1")
}

// 有 goroutine 的地方：SimMP、MachinePool、Driver、async log
func runRace() error {
	PrintGreen("running tests (race)")
	return step(nil, "test", "-race", "-count=1", ".", "./sdk/search", "./server/...")
}

func runBench() error {
	PrintGreen("running benchmarks")
	return step(func(line string) bool {
		return strings.HasPrefix(line, "Benchmark") || strings.HasPrefix(line, "ok") || strings.HasPrefix(line, "FAIL")
	}, "test", "-run", "^$", "-bench", ".", "-benchmem", "./sdk/search", "./sdk/grid")
}

// runSmoke 對 configs/ 下每個遊戲跑一次小量模擬
func runSmoke() error {
	files, err := filepath.Glob(filepath.Join("configs", "*.yaml"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no game configs under configs/")
	}
	for _, f := range files {
		game := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		PrintGreen("smoke: " + game)
		if err := step(nil, "run", "./cmd/run", "-game", game, "-games", "200", "-workers", "2", "-seed", "1", "-progress=false"); err != nil {
			return fmt.Errorf("%s: %w", game, err)
		}
	}
	return nil
}
