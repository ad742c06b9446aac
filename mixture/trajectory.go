package mixture

// Trajectory は一回の EM 実行で採用されたモデルをイテレーション番号順に保持します。
// limit が正の場合は古いものから破棄されますが、イテレーション番号は変わりません。
//
// Trajectory はゴルーチン安全ではありません。
type Trajectory struct {
	models    []*Model
	offset    int // models[0] のイテレーション番号
	base      int // 実行開始時のイテレーション番号
	limit     int
	converged bool
}

func newTrajectory(limit int) *Trajectory {
	if limit < 0 {
		limit = 0
	}
	return &Trajectory{limit: limit}
}

// start は m を先頭として記録する。m のイテレーション番号は維持される。
func (t *Trajectory) start(m *Model) {
	t.offset = m.iteration
	t.base = m.iteration
	t.models = append(t.models[:0], m)
	m.trajectory = t
}

// append は m を次のイテレーションとして記録する。
func (t *Trajectory) append(m *Model) {
	m.iteration = t.offset + len(t.models)
	m.trajectory = t
	t.models = append(t.models, m)
	if t.limit > 0 && len(t.models) > t.limit {
		drop := len(t.models) - t.limit
		for i := 0; i < drop; i++ {
			t.models[i] = nil
		}
		t.models = t.models[drop:]
		t.offset += drop
	}
}

// fork は m までの履歴を持つ新しい Trajectory を返す。
// m 自体の所属は変えない。
func (t *Trajectory) fork(m *Model) *Trajectory {
	kept := t.through(m)
	nt := &Trajectory{limit: t.limit, offset: m.iteration - len(kept) + 1}
	nt.base = nt.offset
	if t.At(m.iteration) == m {
		nt.base = t.base
	}
	nt.models = append(nt.models, kept...)
	return nt
}

// through は m で終わる保持済みの履歴を古い順に返す。
func (t *Trajectory) through(m *Model) []*Model {
	idx := m.iteration - t.offset
	if idx < 0 || idx >= len(t.models) || t.models[idx] != m {
		return []*Model{m}
	}
	out := make([]*Model, idx+1)
	copy(out, t.models[:idx+1])
	return out
}

// At returns the model of the given iteration, or nil if it is not retained.
func (t *Trajectory) At(iteration int) *Model {
	idx := iteration - t.offset
	if idx < 0 || idx >= len(t.models) {
		return nil
	}
	return t.models[idx]
}

// Latest returns the most recently adopted model.
func (t *Trajectory) Latest() *Model {
	if len(t.models) == 0 {
		return nil
	}
	return t.models[len(t.models)-1]
}

// Len returns the number of retained models.
func (t *Trajectory) Len() int { return len(t.models) }

// Dropped returns how many early models were discarded by the history limit.
func (t *Trajectory) Dropped() int { return t.offset - t.base }

// Models returns the retained models, oldest first.
func (t *Trajectory) Models() []*Model {
	out := make([]*Model, len(t.models))
	copy(out, t.models)
	return out
}

// LogLikelihoods returns the log-likelihood of every retained model, oldest first.
func (t *Trajectory) LogLikelihoods() []float64 {
	out := make([]float64, len(t.models))
	for i, m := range t.models {
		out[i] = m.logLikelihood
	}
	return out
}

// Converged reports whether the most recent Maximize on this trajectory stopped
// because the improvement fell to or below the threshold. A later run may
// change it; Model.Converged keeps the result per returned model.
func (t *Trajectory) Converged() bool { return t.converged }
