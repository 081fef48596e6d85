package service

// progressTracker 两阶段加权进度。
//
// AI 生成远慢于提醒写入，按单项经验耗时加权后进度条的推进速度
// 才与真实等待时间大致吻合。总权重为零时退化为按件数计数；
// 两个计数都为零时直接视为完成。汇报值只升不降。
type progressTracker struct {
	totalWork float64
	doneWork  float64
	aiCost    float64
	remCost   float64
	last      int
}

func newProgressTracker(aiCount, reminderCount int, aiCost, reminderCost float64) *progressTracker {
	p := &progressTracker{aiCost: aiCost, remCost: reminderCost}
	p.totalWork = float64(aiCount)*aiCost + float64(reminderCount)*reminderCost
	if p.totalWork == 0 && aiCount+reminderCount > 0 {
		// 权重常量被配置为零时退化为按件数计
		p.aiCost, p.remCost = 1, 1
		p.totalWork = float64(aiCount + reminderCount)
	}
	return p
}

// completeAI 记一项 AI 生成完成，返回当前百分比
func (p *progressTracker) completeAI() int {
	p.doneWork += p.aiCost
	return p.percent()
}

// completeReminder 记一项提醒写入完成，返回当前百分比
func (p *progressTracker) completeReminder() int {
	p.doneWork += p.remCost
	return p.percent()
}

// percent 当前进度，向下取整且单调不减
func (p *progressTracker) percent() int {
	if p.totalWork == 0 {
		return 100
	}
	pct := int(p.doneWork / p.totalWork * 100)
	if pct > 100 {
		pct = 100
	}
	if pct < p.last {
		return p.last
	}
	p.last = pct
	return pct
}
