package in

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"trafficwatch/internal/modules/monitor/dto"
	monitorin "trafficwatch/internal/modules/monitor/port/in"
	apperrors "trafficwatch/internal/platform/errors"
)

type GRPCServer struct {
	usecase monitorin.Usecase
}

func NewGRPCServer(usecase monitorin.Usecase) *GRPCServer {
	return &GRPCServer{usecase: usecase}
}

func (s *GRPCServer) ListSamples(ctx context.Context, in *ListSamplesRequest) (*ListSamplesResponse, error) {
	since, err := parseTimeParam(in.Since)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if in.Limit < 0 {
		return nil, status.Error(codes.InvalidArgument, "limit must not be negative")
	}
	samples, err := s.usecase.History(ctx, dto.HistoryInput{Limit: int(in.Limit), Since: since})
	if err != nil {
		return nil, toStatus(err)
	}
	return &ListSamplesResponse{Samples: samples}, nil
}

func (s *GRPCServer) Latest(ctx context.Context, _ *Empty) (*dto.SampleOutput, error) {
	samples, err := s.usecase.History(ctx, dto.HistoryInput{Limit: 1})
	if err != nil {
		return nil, toStatus(err)
	}
	if len(samples) == 0 {
		return nil, status.Error(codes.NotFound, apperrors.ErrEmptyHistory.Error())
	}
	return &samples[0], nil
}

func (s *GRPCServer) Stats(ctx context.Context, in *StatsRequest) (*dto.StatsOutput, error) {
	since, err := parseTimeParam(in.Since)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	until, err := parseTimeParam(in.Until)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	stats, err := s.usecase.Stats(ctx, dto.StatsInput{Since: since, Until: until})
	if err != nil {
		return nil, toStatus(err)
	}
	return &stats, nil
}

// FormatTime renders a bound for ListSamplesRequest and StatsRequest.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrEmptyHistory):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
