// The MIT License (MIT)
//
// # Copyright (c) 2016 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Command fecreceiver listens for FEC-coded frames over UDP, reassembles
// and recovers blocks, and logs per-block metrics to CSV.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/xtaci/ltfec/internal/metrics"
	"github.com/xtaci/ltfec/internal/pipeline"
	"github.com/xtaci/ltfec/internal/transport"
	"github.com/xtaci/ltfec/internal/wire"
)

// VERSION is injected by buildflags
var VERSION = "SELFBUILD"

func nowMs() uint64 {
	return uint64(time.Now().UnixNano() / int64(time.Millisecond))
}

func checkError(err error) {
	if err != nil {
		color.Red("%+v", err)
		os.Exit(-1)
	}
}

func main() {
	if VERSION == "SELFBUILD" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	myApp := cli.NewApp()
	myApp.Name = "fecreceiver"
	myApp.Usage = "block FEC receiver over UDP"
	myApp.Version = VERSION
	myApp.Flags = []cli.Flag{
		cli.StringFlag{Name: "listen", Usage: "listen <ip:port> (required)"},
		cli.StringFlag{Name: "mcast-if", Value: "", Usage: "multicast interface IPv4 (required for multicast)"},
		cli.IntFlag{Name: "expect-blocks", Value: 1, Usage: "stop after closing this many blocks"},
		cli.IntFlag{Name: "reorder-ms", Value: 200, Usage: "reorder window ms (>=50)"},
		cli.IntFlag{Name: "fps", Value: 30, Usage: "sender FPS hint, affects the 2x-span close rule"},
		cli.StringFlag{Name: "metrics-dir", Value: "metrics", Usage: "directory for the per-run CSV"},
		cli.BoolFlag{Name: "quiet", Usage: "suppress per-frame stdout logging"},
		cli.StringFlag{Name: "c", Value: "", Usage: "config from json file, which will override the command from shell"},
	}
	myApp.Action = func(c *cli.Context) error {
		config := Config{}
		config.Listen = c.String("listen")
		config.McastIf = c.String("mcast-if")
		config.ExpectBlocks = c.Int("expect-blocks")
		config.ReorderMs = c.Int("reorder-ms")
		config.FPS = c.Int("fps")
		config.MetricsDir = c.String("metrics-dir")
		config.Quiet = c.Bool("quiet")

		if c.String("c") != "" {
			checkError(parseJSONConfig(&config, c.String("c")))
		}

		if config.Listen == "" {
			return errors.New("fecreceiver: --listen is required")
		}
		if config.ExpectBlocks <= 0 {
			config.ExpectBlocks = 1
		}
		if config.ReorderMs < 50 {
			config.ReorderMs = 50
		}
		if config.FPS <= 0 {
			config.FPS = 30
		}

		ep, ok := transport.ParseEndpoint(config.Listen)
		if !ok {
			return errors.Errorf("fecreceiver: invalid --listen %q", config.Listen)
		}
		isMcast := transport.IsMulticast(ep.IP)
		if isMcast && config.McastIf == "" {
			return errors.New("fecreceiver: multicast listen requires --mcast-if")
		}

		m := metrics.NewCsvWriter(metrics.SchemaVersion)
		m.SetHeader(metrics.StandardHeader())
		ts0 := nowMs()
		m.AddRow([]string{strconv.FormatUint(ts0, 10), "receiver", "start", ep.String(), strconv.Itoa(int(ep.Port)), "0"})

		rx, err := transport.ListenReceiver(transport.ReceiverConfig{
			BindAddr: config.Listen,
			Mcast:    transport.McastConfig{Enabled: isMcast, OutboundIf: config.McastIf},
		})
		if err != nil {
			m.FinishWithSummary("error: " + err.Error())
			saveMetrics(m, config.MetricsDir, "receiver", m.RunUUID())
			return err
		}
		defer rx.Close()

		rxt := pipeline.NewRxBlockTable(pipeline.RxConfig{
			ReorderMs:     uint32(config.ReorderMs),
			FPS:           uint32(config.FPS),
			MaxPayloadLen: 1300,
		})

		closedBlocks := 0
		seenGens := make(map[uint32]struct{})
		buf := make([]byte, 4096)

		for {
			n, addr, err := rx.Recv(buf)
			ts := nowMs()
			if err != nil {
				m.AddRow([]string{strconv.FormatUint(ts, 10), "receiver", "recv_error", config.Listen, strconv.Itoa(int(ep.Port)), "0"})
				m.FinishWithSummary("error: " + err.Error())
				break
			}

			df, ok := wire.DecodeFrame(buf[:n])
			if !ok || !wire.VerifyPayloadCRC(df.Payload, df.CRC) {
				m.AddRow([]string{strconv.FormatUint(ts, 10), "receiver", "decode_error", config.Listen, strconv.Itoa(int(ep.Port)), strconv.Itoa(n)})
				continue
			}

			rxt.Ingest(ts, df.Header, df.HasParitySub, df.ParitySub, df.Payload)
			seenGens[df.Header.GenID] = struct{}{}

			if !config.Quiet {
				kind := "DAT"
				if df.HasParitySub {
					kind = "PAR"
				}
				fmt.Printf("rx %s gen=%d seq=%d/%d K=%d payload=%d from %s\n",
					kind, df.Header.GenID, df.Header.SeqInBlock, df.Header.DataCount,
					df.Header.ParityCount, df.Header.PayloadLen, addr)
			}

			done := false
			for gen := range seenGens {
				if !rxt.ShouldClose(gen, ts) {
					continue
				}
				closed, ok := rxt.CloseIfReady(gen, ts)
				if !ok {
					continue
				}
				delete(seenGens, gen)

				present, recovered := 0, 0
				for i := 0; i < closed.N; i++ {
					if closed.Data[i] != nil {
						present++
					}
					if closed.WasRecovered[i] {
						recovered++
					}
				}
				if !config.Quiet {
					fmt.Printf("block CLOSED gen=%d N=%d K=%d payload=%d present=%d recovered=%d\n",
						closed.GenID, closed.N, closed.K, closed.L, present, recovered)
				}
				m.AddRow([]string{strconv.FormatUint(ts, 10), "receiver", "block_closed", config.Listen, strconv.Itoa(int(ep.Port)), strconv.Itoa(present)})

				closedBlocks++
				if closedBlocks >= config.ExpectBlocks {
					m.FinishWithSummary("ok")
					done = true
					break
				}
			}
			if done {
				break
			}
		}

		saveMetrics(m, config.MetricsDir, "receiver", m.RunUUID())
		return nil
	}

	if err := myApp.Run(os.Args); err != nil {
		checkError(err)
	}
}

func saveMetrics(m *metrics.CsvWriter, dir, role, runID string) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Println(err)
		return
	}
	path := filepath.Join(dir, role+"_"+runID+".csv")
	if err := m.SaveToFile(path); err != nil {
		log.Println(err)
	}
}
