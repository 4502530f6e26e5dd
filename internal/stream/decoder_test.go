package stream

import (
	"reflect"
	"testing"
)

func feedAll(d *FrameDecoder, chunks []string) []Frame {
	var frames []Frame
	for _, c := range chunks {
		frames = append(frames, d.Feed(c)...)
	}
	if f, ok := d.Finish(); ok {
		frames = append(frames, f)
	}
	return frames
}

func splitEvery(s string, n int) []string {
	var chunks []string
	for len(s) > 0 {
		if len(s) <= n {
			chunks = append(chunks, s)
			break
		}
		chunks = append(chunks, s[:n])
		s = s[n:]
	}
	return chunks
}

func TestFrameDecoderChunkBoundaryIndependence(t *testing.T) {
	raw := "data: {\"message\":\"好的，\"}\ndata: {\"message\":\"推荐\"}\ndata: plain text\n"

	var want []Frame
	{
		var d FrameDecoder
		want = feedAll(&d, []string{raw})
	}
	if len(want) != 3 {
		t.Fatalf("期望 3 帧, 实际 %d", len(want))
	}

	// 任意字节边界切分都必须得到相同的帧序列, 包括切在多字节字符中间
	for _, size := range []int{1, 2, 3, 5, 7, 16, 64} {
		var d FrameDecoder
		got := feedAll(&d, splitEvery(raw, size))
		if !reflect.DeepEqual(got, want) {
			t.Errorf("切分大小 %d: 帧序列 = %v, 期望 %v", size, got, want)
		}
	}
}

func TestFrameDecoderIgnoresNonDataLines(t *testing.T) {
	var d FrameDecoder
	frames := d.Feed(": keep-alive\n\nevent: ping\ndata: hello\nretry: 300\n")

	if len(frames) != 1 {
		t.Fatalf("期望 1 帧, 实际 %d: %v", len(frames), frames)
	}
	if frames[0].Data != "hello" {
		t.Errorf("帧内容 = %q, 期望 %q", frames[0].Data, "hello")
	}
}

func TestFrameDecoderFinish(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantData string
		wantOK   bool
	}{
		{
			name:     "末尾无换行的完整帧被补发",
			input:    "data: tail frame",
			wantData: "tail frame",
			wantOK:   true,
		},
		{
			name:   "残缺内容被丢弃",
			input:  "dat",
			wantOK: false,
		},
		{
			name:   "空缓冲",
			input:  "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d FrameDecoder
			d.Feed(tt.input)
			f, ok := d.Finish()
			if ok != tt.wantOK {
				t.Fatalf("Finish ok = %v, 期望 %v", ok, tt.wantOK)
			}
			if ok && f.Data != tt.wantData {
				t.Errorf("帧内容 = %q, 期望 %q", f.Data, tt.wantData)
			}
		})
	}
}

func TestFrameDecoderNoDuplicateEmission(t *testing.T) {
	var d FrameDecoder
	first := d.Feed("data: one\ndata: tw")
	second := d.Feed("o\n")

	if len(first) != 1 || first[0].Data != "one" {
		t.Fatalf("第一次 Feed = %v", first)
	}
	if len(second) != 1 || second[0].Data != "two" {
		t.Fatalf("第二次 Feed = %v", second)
	}
	if f, ok := d.Finish(); ok {
		t.Errorf("Finish 不应再产出帧, 实际 %v", f)
	}
}
