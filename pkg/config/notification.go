package config

type NotificationsConfig struct {
	// Detailed sends one embed per resolution instead of a summary only.
	Detailed     bool                `koanf:"detailed"`
	SkipEmptyRun bool                `koanf:"skip_empty_run"`
	Service      NotificationService `koanf:"service"`
}

type NotificationService struct {
	// Discord is a webhook url; empty disables the sender.
	Discord string `koanf:"discord"`
}
