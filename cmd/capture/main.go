package main

import (
	"context"
	goflag "flag"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/sensecam/capture/pkg/capture"
	"github.com/sensecam/capture/pkg/config"
	"github.com/sensecam/capture/pkg/hw/hwsim"
	"github.com/sensecam/capture/pkg/logger"
	"github.com/sensecam/capture/pkg/monitoring"
	"github.com/sensecam/capture/pkg/os"
)

const (
	frameBase     = 0x2000_0000
	ringSize      = 4
	frameInterval = 33 * time.Millisecond
)

func main() {
	conf := config.NewCaptureConfig()
	conf.WithFlags()
	flag.CommandLine.AddGoFlagSet(goflag.CommandLine)
	flag.Parse()

	log := logger.NewConsole(conf.Capture.Debug, "cap")
	log.Info().Msgf("device: %v, %vx%v %v", conf.Capture.Device,
		conf.Capture.Width, conf.Capture.Height, conf.Capture.Format)

	sim := hwsim.New(log)
	engine, err := capture.Attach(sim, conf.Capture, log)
	if err != nil {
		log.Fatal().Err(err).Msg("attach failed")
	}
	sim.OnInterrupt(engine.Interrupt)

	var mon *monitoring.Monitoring
	if conf.Monitoring.Port > 0 {
		engine.SetMetrics(monitoring.NewMetrics())
		mon = monitoring.New(conf.Monitoring, "cap", log)
		mon.Run()
	}

	// Caller-supplied frame ring.
	size := conf.Capture.Width * conf.Capture.Height * 2
	buffers := make([]*capture.Buffer, ringSize)
	for i := range buffers {
		buffers[i] = capture.NewBuffer(i, frameBase+uint32(i)*size, size)
		if err := engine.Enqueue(buffers[i]); err != nil {
			log.Fatal().Err(err).Msg("enqueue failed")
		}
	}

	if err := engine.Start(len(buffers)); err != nil {
		log.Fatal().Err(err).Msg("start failed")
	}
	sim.Run(frameInterval)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for {
			b, err := engine.DequeueRetired(ctx)
			if err != nil {
				return
			}
			if b.Status != nil {
				log.Debug().Msgf("buffer %v retired: %v", b.ID, b.Status)
				continue
			}
			log.Info().Msgf("frame %v in buffer %v at %v", b.Seq, b.ID,
				b.CapturedAt.Format("15:04:05.000"))
			if err := engine.Enqueue(b); err != nil {
				log.Error().Err(err).Msg("requeue failed")
			}
		}
	}()

	<-os.ExpectTermination()
	log.Info().Msg("shutting down")

	cancel()
	if err := engine.Stop(conf.Capture.Triggered); err != nil {
		log.Error().Err(err).Msg("stop failed")
	}
	sim.Close()
	engine.Detach()
	if mon != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = mon.Shutdown(shutdownCtx)
	}
}
