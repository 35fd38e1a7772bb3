package log

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type logSuite struct {
	suite.Suite
}

func TestLog(t *testing.T) {
	suite.Run(t, new(logSuite))
}

func (s *logSuite) TestWithFieldDoesNotShareBackingArray() {
	base := Log().WithField("a", 1)
	l1 := base.WithField("b", 2)
	l2 := base.WithField("c", 3)

	s.Equal([]interface{}{"a", 1}, base.fields)
	s.Equal([]interface{}{"a", 1, "b", 2}, l1.fields)
	s.Equal([]interface{}{"a", 1, "c", 3}, l2.fields)
}

func (s *logSuite) TestWithFields() {
	l := Log().WithFields(Fields{"tokenId": "1"})
	s.Equal([]interface{}{"tokenId", "1"}, l.fields)
}

func (s *logSuite) TestSetDebug() {
	SetDebug(true)
	defer SetDebug(false)
	s.NotPanics(func() {
		Log().WithField("k", "v").Debug("debug message")
	})
}
