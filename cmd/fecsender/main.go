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

// Command fecsender assembles one FEC-coded block from a repeated payload
// pattern and transmits it over UDP, logging per-frame metrics to CSV.
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
)

// VERSION is injected by buildflags
var VERSION = "SELFBUILD"

func nowMs() uint64 {
	return uint64(time.Now().UnixNano() / int64(time.Millisecond))
}

// makePayload builds an L-byte payload derived from src, perturbed per
// frame index so sibling frames in a block aren't byte-identical.
func makePayload(src string, l int, idx uint16) []byte {
	if l == 0 {
		return nil
	}
	if src == "" {
		src = "x"
	}
	out := make([]byte, l)
	for i := 0; i < l; i++ {
		ch := src[i%len(src)]
		out[i] = ch ^ byte((int(idx)*17+i)&0xFF)
	}
	return out
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
	myApp.Name = "fecsender"
	myApp.Usage = "block FEC transmitter over UDP"
	myApp.Version = VERSION
	myApp.Flags = []cli.Flag{
		cli.StringFlag{Name: "dest", Usage: "destination <ip:port> (required)"},
		cli.StringFlag{Name: "mcast-if", Value: "", Usage: "multicast egress interface IPv4 (required when dest is multicast)"},
		cli.IntFlag{Name: "mcast-ttl", Value: 1, Usage: "multicast TTL, 0..255"},
		cli.BoolFlag{Name: "mcast-loopback", Usage: "accepted but not applied; the socket keeps the OS default multicast loopback"},
		cli.StringFlag{Name: "msg", Value: "ltfec hello", Usage: "payload text pattern; its length is the payload length if --payload-len < 0"},
		cli.IntFlag{Name: "payload-len", Value: -1, Usage: "payload length in bytes; if <0, use len(msg)"},
		cli.IntFlag{Name: "N", Value: 8, Usage: "data frames per block"},
		cli.IntFlag{Name: "K", Value: 1, Usage: "parity frames per block (1=XOR, 2..4=GF(256))"},
		cli.IntFlag{Name: "fps", Value: 30, Usage: "pacing for data frames, frames/second"},
		cli.StringFlag{Name: "metrics-dir", Value: "metrics", Usage: "directory for the per-run CSV"},
		cli.BoolFlag{Name: "quiet", Usage: "suppress per-frame stdout logging"},
		cli.StringFlag{Name: "c", Value: "", Usage: "config from json file, which will override the command from shell"},
	}
	myApp.Action = func(c *cli.Context) error {
		config := Config{}
		config.Dest = c.String("dest")
		config.McastIf = c.String("mcast-if")
		config.McastTTL = c.Int("mcast-ttl")
		config.McastLoopback = c.Bool("mcast-loopback")
		config.Msg = c.String("msg")
		config.PayloadLen = c.Int("payload-len")
		config.N = c.Int("N")
		config.K = c.Int("K")
		config.FPS = c.Int("fps")
		config.MetricsDir = c.String("metrics-dir")
		config.Quiet = c.Bool("quiet")

		if c.String("c") != "" {
			checkError(parseJSONConfig(&config, c.String("c")))
		}

		if config.Dest == "" {
			return errors.New("fecsender: --dest is required")
		}
		if config.N <= 0 || config.N > 255 || config.K < 0 || config.K > 4 {
			return errors.New("fecsender: invalid N/K (N: 1..255, K: 0..4)")
		}
		if config.FPS <= 0 {
			config.FPS = 30
		}

		ep, ok := transport.ParseEndpoint(config.Dest)
		if !ok {
			return errors.Errorf("fecsender: invalid --dest %q", config.Dest)
		}
		destIsMcast := transport.IsMulticast(ep.IP)
		if destIsMcast && config.McastIf == "" {
			return errors.New("fecsender: multicast destination requires --mcast-if")
		}

		payloadLen := config.PayloadLen
		if payloadLen < 0 {
			payloadLen = len(config.Msg)
		}

		asm, ok := pipeline.NewTxBlockAssembler(
			pipeline.TxConfig{N: config.N, K: config.K, MaxPayloadLen: 1300},
			uint32(nowMs()&0xFFFFFFFF),
		)
		if !ok {
			return errors.New("fecsender: rejected N/K configuration")
		}

		dataPayloads := make([][]byte, config.N)
		for i := 0; i < config.N; i++ {
			dataPayloads[i] = makePayload(config.Msg, payloadLen, uint16(i))
		}
		frames, ok := asm.AssembleBlock(dataPayloads)
		if !ok {
			return errors.New("fecsender: assemble_block failed")
		}
		gen := asm.PeekNextGenID() - 1

		m := metrics.NewCsvWriter(metrics.SchemaVersion)
		m.SetHeader(metrics.StandardHeader())
		ts0 := nowMs()
		m.AddRow([]string{strconv.FormatUint(ts0, 10), "sender", "start", ep.String(), strconv.Itoa(int(ep.Port)), "0"})

		sender, err := transport.DialSender(transport.SenderConfig{
			Dest: ep,
			Mcast: transport.McastConfig{
				Enabled:    destIsMcast,
				OutboundIf: config.McastIf,
			},
			TTL: config.McastTTL,
		})
		if err != nil {
			m.FinishWithSummary("error: " + err.Error())
			saveMetrics(m, config.MetricsDir, "sender", m.RunUUID())
			return err
		}
		defer sender.Close()

		dtMs := 1000 / config.FPS
		if dtMs < 1 {
			dtMs = 1
		}
		totalSent := 0
		for i, frame := range frames {
			n, err := sender.Send(frame)
			ts := nowMs()
			totalSent += n
			if err != nil {
				m.AddRow([]string{strconv.FormatUint(ts, 10), "sender", "send_error", config.Dest, strconv.Itoa(int(ep.Port)), strconv.Itoa(n)})
				m.FinishWithSummary("error: " + err.Error())
				break
			}
			event := "sent_parity"
			if i < config.N {
				event = "sent_data"
			}
			m.AddRow([]string{strconv.FormatUint(ts, 10), "sender", event, config.Dest, strconv.Itoa(int(ep.Port)), strconv.Itoa(n)})
			if i+1 < config.N {
				time.Sleep(time.Duration(dtMs) * time.Millisecond)
			}
		}

		if !config.Quiet {
			suffix := ""
			if destIsMcast {
				suffix = " [multicast]"
			}
			fmt.Printf("sent block gen=%d with N=%d K=%d (payload=%dB each, frames=%d, total=%dB)%s\n",
				gen, config.N, config.K, payloadLen, len(frames), totalSent, suffix)
		}

		m.FinishWithSummary("ok")
		saveMetrics(m, config.MetricsDir, "sender", m.RunUUID())
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
