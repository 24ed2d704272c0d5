package config

type Chat struct{}

var _ ChatConfig = Chat{}

func (Chat) GetMaxHistoryEntries() int {
	return GetEnvInt("UNIASSIST_MAX_HISTORY", 50)
}
