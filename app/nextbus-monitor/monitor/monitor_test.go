package monitor

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestRunSensorMonitorLoop_exitsOnShutdownSignal(t *testing.T) {
	is := is.New(t)
	source := &fakePredictionSource{
		raw: `[1,"StopA","LineB","DestC","trip42",1700000000000,1700003600000]`,
	}
	sensor := MakeNextBusSensor(testLogger(), source, "ASEAG Next Bus", "100635", "1")

	shutdown := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() {
		done <- RunSensorMonitorLoop(testLogger(), sensor, nil, "", nil, "", 60, shutdown)
	}()

	// give the loop a moment to run its first cycle, then shut it down
	time.Sleep(50 * time.Millisecond)
	shutdown <- syscall.SIGTERM

	select {
	case err := <-done:
		is.NoErr(err)
	case <-time.After(2 * time.Second):
		t.Fatal("monitor loop did not exit on shutdown signal")
	}

	is.True(source.calls >= 1) // first cycle ran without waiting for the cadence
}

func TestFmtDuration(t *testing.T) {
	is := is.New(t)
	is.Equal(fmtDuration(time.Duration(90)*time.Minute+time.Duration(250)*time.Millisecond), "01:30.250")
}
