package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerNamed(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	namedLogger := Named("trends")
	if namedLogger == nil {
		t.Fatal("named logger is nil")
	}
	namedLogger.Info(context.Background(), "test message")
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a logger writing into a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf), ShouldBeNil)
		log := Get()
		ctx := context.Background()

		Convey("When logging with structured fields", func() {
			log.Info(ctx, "trend resolved",
				String("career_id", "software-engineer"),
				Int("attempts", 2),
				Float64("score", 8.5),
				Bool("fallback", true),
				Duration("took", 15*time.Millisecond),
				Error(errors.New("boom")),
			)

			Convey("Then every field is rendered", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "trend resolved")
				So(out, ShouldContainSubstring, "career_id=software-engineer")
				So(out, ShouldContainSubstring, "attempts=2")
				So(out, ShouldContainSubstring, "fallback=true")
				So(out, ShouldContainSubstring, "error=boom")
				So(out, ShouldContainSubstring, "source=")
			})
		})

		Convey("When the level is raised to warn", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			defer func() { _ = SetLevelString("info") }()
			log.Info(ctx, "quiet")
			log.Warn(ctx, "loud")

			Convey("Then info records are dropped", func() {
				So(buf.String(), ShouldNotContainSubstring, "quiet")
				So(buf.String(), ShouldContainSubstring, "loud")
			})
		})

		Convey("When a nil writer is given", func() {
			So(InitWithWriter(nil), ShouldNotBeNil)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		for _, lvl := range []string{"debug", "info", "", "WARN", "warning", "error"} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("verbose"), ShouldNotBeNil)
		_ = SetLevelString("info")
	})
}

func TestNop(t *testing.T) {
	Convey("Given a nop logger", t, func() {
		So(func() { Nop().Named("x").Debug(context.Background(), "ignored") }, ShouldNotPanic)
	})
}
