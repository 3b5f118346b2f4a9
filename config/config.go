/*
Copyright 2025 Posguard Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

var ConfigStore atomic.Value

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"POSGUARD_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"POSGUARD_REDIS_DNS"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack SlackWebhook `json:"slack"`
}

// ReconciliationConfig tunes the matching windows. Zero values fall back to
// the defaults below.
type ReconciliationConfig struct {
	// ProviderLookbackDays is how far back provider events are pulled for
	// re-matching.
	ProviderLookbackDays int `json:"provider_lookback_days" envconfig:"POSGUARD_PROVIDER_LOOKBACK_DAYS"`
	// MinTrailingDays is the floor applied to month-to-date windows.
	MinTrailingDays int `json:"min_trailing_days" envconfig:"POSGUARD_MIN_TRAILING_DAYS"`
	// SchedulerCron is the asynq schedule for the default daily run.
	SchedulerCron string `json:"scheduler_cron" envconfig:"POSGUARD_SCHEDULER_CRON"`
}

type Configuration struct {
	ProjectName    string               `json:"project_name" envconfig:"POSGUARD_PROJECT_NAME"`
	DataSource     DataSourceConfig     `json:"data_source"`
	Redis          RedisConfig          `json:"redis"`
	Notification   Notification         `json:"notification"`
	Reconciliation ReconciliationConfig `json:"reconciliation"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("posguard", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called posguard.json with your config")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Posguard"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	if cnf.Reconciliation.ProviderLookbackDays == 0 {
		cnf.Reconciliation.ProviderLookbackDays = 30
	}
	if cnf.Reconciliation.MinTrailingDays == 0 {
		cnf.Reconciliation.MinTrailingDays = 10
	}
	if cnf.Reconciliation.SchedulerCron == "" {
		// Daily at 06:00; the window resolver decides whether anything runs.
		cnf.Reconciliation.SchedulerCron = "0 6 * * *"
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
