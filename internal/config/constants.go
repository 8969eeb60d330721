package config

import "time"

// Base application details
const AppName = "inkblock"
const ConfigDirName = "inkblock"
const DefaultConfigFileName = "config.toml"
const DefaultLogFileName = "inkblock.log"

// UI layout
const StatusBarHeight = 1

// Status bar
const MessageTimeout = 4 * time.Second

// Engine defaults
const DefaultHistoryDepth = 50
const DefaultEditDebounce = time.Second
const DefaultSanitizeDepth = 10
const DefaultScrollMargin = 2
const DefaultSystemClipboard = true
const DefaultType = "paragraph"
