package sound

// 音效名称
const (
	Turn   = "turn"   // 轮到自己
	Joined = "joined" // 对方加入
	Alert  = "alert"  // 连接出错
)

// chimes 内置提示音的音高序列（Hz）
var chimes = map[string][]float64{
	Turn:   {659.25, 880},
	Joined: {523.25, 659.25, 783.99},
	Alert:  {440, 330},
}
