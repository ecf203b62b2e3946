package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"
	"time"

	"github.com/cbegin/segloop-go"
	"github.com/cbegin/segloop-go/internal/device"
	"github.com/cbegin/segloop-go/internal/stage"
)

func main() {
	var (
		filePath = flag.String("file", "", "audio file to play (wav, mp3, or ogg)")
		start    = flag.Float64("start", 0, "segment start in seconds")
		end      = flag.Float64("end", 0, "segment end in seconds (0 = end of file)")
		repeat   = flag.Int("repeat", 1, "number of repetitions")
		tick     = flag.Duration("tick", 10*time.Millisecond, "poll interval of the playback loop")
	)
	flag.Parse()
	if *filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	// Clear staged clips a previous crash may have left behind, and our
	// own on the way out.
	stage.Sweep(os.TempDir())
	defer stage.Sweep(os.TempDir())

	buf, err := segloop.Load(*filePath)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s: %.2fs, %d Hz, %d channel(s)\n", *filePath, buf.Duration(), buf.SampleRate, buf.Channels)

	endSec := *end
	if endSec <= 0 {
		endSec = buf.Duration()
	}
	req := segloop.Request{Start: *start, End: endSec, Repeat: *repeat}

	sess := segloop.NewSession(buf, device.New(),
		segloop.WithTick(*tick),
		segloop.WithOnRepetition(func(rep, total int) {
			fmt.Printf("repetition %d/%d: %.2fs to %.2fs\n", rep, total, req.Start, req.End)
		}))

	interrupt := make(chan os.Signal, 1)
	ossignal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		fmt.Println("\ninterrupt: stopping playback")
		sess.Cancel()
	}()

	res, err := sess.Run(req, segloop.NopPump)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("playback", res)
}
