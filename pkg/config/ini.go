package config

import (
	"strconv"

	"gopkg.in/ini.v1"
)

// readINI maps the sectioned config.ini layout onto the config
func readINI(path string, config *Config) error {
	file, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		return err
	}

	email := file.Section("EMAIL")
	config.Email.From = email.Key("from_address").MustString(config.Email.From)
	config.Email.Recipients = email.Key("recipients").MustString(config.Email.Recipients)
	config.Email.Transport = email.Key("transport").MustString(config.Email.Transport)
	config.Email.SMTPHost = email.Key("smtp_host").MustString(config.Email.SMTPHost)
	config.Email.SMTPPort = email.Key("smtp_port").MustInt(config.Email.SMTPPort)
	config.Email.GmailClientID = email.Key("gmail_client_id").MustString(config.Email.GmailClientID)
	config.Email.GmailClientSecret = email.Key("gmail_client_secret").MustString(config.Email.GmailClientSecret)
	config.Email.GmailRefreshToken = email.Key("gmail_refresh_token").MustString(config.Email.GmailRefreshToken)

	config.BaseDir = file.Section("PATHS").Key("base_dir").MustString(config.BaseDir)

	server := file.Section("SERVER")
	config.Server.Host = server.Key("host").MustString(config.Server.Host)
	config.Server.Port = server.Key("port").MustInt(config.Server.Port)

	upload := file.Section("UPLOAD")
	config.Upload.Enabled = upload.Key("enabled").MustBool(config.Upload.Enabled)
	config.Upload.User = upload.Key("fadataloader_user").MustString(config.Upload.User)
	config.Upload.Password = upload.Key("fadataloader_pass").MustString(config.Upload.Password)
	config.Upload.Executable = upload.Key("executable").MustString(config.Upload.Executable)

	policy := file.Section("POLICY")
	config.Policy.ExpiryWindowDays = policy.Key("expiry_window_days").MustInt(config.Policy.ExpiryWindowDays)
	config.Policy.DeleteYesterdayOutput = policy.Key("delete_yesterday_output").MustBool(config.Policy.DeleteYesterdayOutput)
	config.Policy.LogRetention = policy.Key("log_retention").MustInt(config.Policy.LogRetention)
	config.Policy.OutputMaxAge = policy.Key("output_max_age").MustDuration(config.Policy.OutputMaxAge)

	snapshot := file.Section("SNAPSHOT")
	config.Snapshot.Store = snapshot.Key("store").MustString(config.Snapshot.Store)
	config.Snapshot.MongoConnection = snapshot.Key("mongo_connection").MustString(config.Snapshot.MongoConnection)
	config.Snapshot.MongoDatabase = snapshot.Key("mongo_database").MustString(config.Snapshot.MongoDatabase)

	redis := file.Section("REDIS")
	config.Redis.Address = redis.Key("address").MustString(config.Redis.Address)
	config.Redis.Password = redis.Key("password").MustString(config.Redis.Password)
	config.Redis.Database = redis.Key("database").MustInt(config.Redis.Database)

	config.Metrics.PushgatewayURL = file.Section("METRICS").Key("pushgateway_url").MustString(config.Metrics.PushgatewayURL)

	return nil
}

func writeINI(path string, config *Config) error {
	file := ini.Empty()

	sections := []struct {
		name   string
		values [][2]string
	}{
		{"EMAIL", [][2]string{
			{"from_address", config.Email.From},
			{"recipients", config.Email.Recipients},
			{"transport", config.Email.Transport},
			{"smtp_host", config.Email.SMTPHost},
			{"smtp_port", strconv.Itoa(config.Email.SMTPPort)},
		}},
		{"PATHS", [][2]string{{"base_dir", config.BaseDir}}},
		{"SERVER", [][2]string{
			{"host", config.Server.Host},
			{"port", strconv.Itoa(config.Server.Port)},
		}},
		{"UPLOAD", [][2]string{
			{"enabled", strconv.FormatBool(config.Upload.Enabled)},
			{"fadataloader_user", config.Upload.User},
			{"fadataloader_pass", config.Upload.Password},
			{"executable", config.Upload.Executable},
		}},
		{"POLICY", [][2]string{
			{"expiry_window_days", strconv.Itoa(config.Policy.ExpiryWindowDays)},
			{"delete_yesterday_output", strconv.FormatBool(config.Policy.DeleteYesterdayOutput)},
			{"log_retention", strconv.Itoa(config.Policy.LogRetention)},
			{"output_max_age", config.Policy.OutputMaxAge.String()},
		}},
	}

	for _, section := range sections {
		for _, value := range section.values {
			if _, err := file.Section(section.name).NewKey(value[0], value[1]); err != nil {
				return err
			}
		}
	}

	return file.SaveTo(path)
}
