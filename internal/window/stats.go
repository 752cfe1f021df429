package window

import (
	"context"
	"strings"

	"snaptile/internal/model"
)

// Statistics and filter queries always re-capture live desktop state;
// nothing here is cached.

func (s *Service) GetWindowStatistics(ctx context.Context) (*model.WindowStatistics, error) {
	windows, err := s.CaptureDesktopLayout(ctx)
	if err != nil {
		return nil, err
	}

	stats := &model.WindowStatistics{
		ByProcess: make(map[string]int),
		ByMonitor: make(map[int]int),
	}
	for _, w := range windows {
		stats.TotalWindows++
		if w.IsVisible {
			stats.VisibleWindows++
		}
		switch w.State {
		case model.WindowStateMinimized:
			stats.MinimizedWindows++
		case model.WindowStateMaximized:
			stats.MaximizedWindows++
		}
		if w.ProcessName != "" {
			stats.ByProcess[w.ProcessName]++
		}
		stats.ByMonitor[w.Monitor]++
	}
	return stats, nil
}

func (s *Service) GetWindowsByProcess(ctx context.Context, processName string) ([]model.WindowInfo, error) {
	return s.filterWindows(ctx, func(w *model.WindowInfo) bool {
		return strings.EqualFold(w.ProcessName, processName)
	})
}

func (s *Service) GetWindowsByTitle(ctx context.Context, title string) ([]model.WindowInfo, error) {
	needle := strings.ToLower(title)
	return s.filterWindows(ctx, func(w *model.WindowInfo) bool {
		return strings.Contains(strings.ToLower(w.WindowTitle), needle)
	})
}

func (s *Service) GetWindowsByMonitor(ctx context.Context, monitorIndex int) ([]model.WindowInfo, error) {
	return s.filterWindows(ctx, func(w *model.WindowInfo) bool {
		return w.Monitor == monitorIndex
	})
}

func (s *Service) GetWindowsByState(ctx context.Context, state model.WindowState) ([]model.WindowInfo, error) {
	return s.filterWindows(ctx, func(w *model.WindowInfo) bool {
		return w.State == state
	})
}

func (s *Service) filterWindows(ctx context.Context, keep func(*model.WindowInfo) bool) ([]model.WindowInfo, error) {
	windows, err := s.CaptureDesktopLayout(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.WindowInfo
	for i := range windows {
		if keep(&windows[i]) {
			out = append(out, windows[i])
		}
	}
	return out, nil
}
