package protocol

import "github.com/emotiv/cortexgo/pkg/cortexerr"

func errInvalidArgument(method, format string, args ...any) error {
	err := cortexerr.New(cortexerr.KindInvalidArgument, format, args...)
	if method != "" {
		return err.WithMethod(method)
	}
	return err
}
