package composer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"rhizo-cli/internal/tools"
)

// ErrNotInteractive 标准输入不是终端，无法取得操作者确认
var ErrNotInteractive = errors.New("confirmation requires an interactive terminal")

// Confirmer 向操作者展示估算并取得明确同意
type Confirmer interface {
	Confirm(est Estimate) (bool, error)
}

// PromptConfirmer 从 In 读取一行，y / yes 视为同意，其余一律拒绝
type PromptConfirmer struct {
	In  io.Reader
	Out io.Writer
}

func (c *PromptConfirmer) Confirm(est Estimate) (bool, error) {
	fmt.Fprint(c.Out, FormatEstimate(est))
	fmt.Fprint(c.Out, "Proceed? [y/N]: ")

	line, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// TerminalConfirmer 仅在终端上询问；管道输入不能代替操作者确认
type TerminalConfirmer struct {
	In  *os.File
	Out io.Writer
}

func NewTerminalConfirmer() *TerminalConfirmer {
	return &TerminalConfirmer{In: os.Stdin, Out: os.Stderr}
}

func (c *TerminalConfirmer) Confirm(est Estimate) (bool, error) {
	if !term.IsTerminal(int(c.In.Fd())) {
		return false, ErrNotInteractive
	}
	return (&PromptConfirmer{In: c.In, Out: c.Out}).Confirm(est)
}

// FormatEstimate 确认提示正文（lamports 与 SOL 同时给出）
func FormatEstimate(est Estimate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Operation: %s %s\n", est.Operation, est.Target)
	fmt.Fprintf(&b, "  fee:    %d lamports (%s SOL)\n", est.FeeLamports, tools.FormatSol(est.FeeLamports))
	if est.RentLamports > 0 {
		fmt.Fprintf(&b, "  rent:   %d lamports (%s SOL)\n", est.RentLamports, tools.FormatSol(est.RentLamports))
	}
	if est.RefundLamports > 0 {
		fmt.Fprintf(&b, "  refund: %d lamports (%s SOL)\n", est.RefundLamports, tools.FormatSol(est.RefundLamports))
	}
	return b.String()
}
