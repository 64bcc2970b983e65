/*
Copyright 2021 Gravitational, Inc.

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

// Package resources holds definitions shared by the custom resources.
package resources

import (
	"github.com/gravitational/provisioner/lib/sizing"
)

// Resource property names
const (
	PropertyRegionName            = "RegionName"
	PropertyMultiNode             = "MultiNode"
	PropertyActionCenter          = "ActionCenter"
	PropertyTestManager           = "TestManager"
	PropertyInsights              = "Insights"
	PropertyDataService           = "DataService"
	PropertyAutomationHub         = "AutomationHub"
	PropertyAutomationOps         = "AutomationOps"
	PropertyTaskMining            = "TaskMining"
	PropertyAiCenter              = "AiCenter"
	PropertyDocumentUnderstanding = "DocumentUnderstanding"
	PropertyBusinessApps          = "BusinessApps"
	PropertyAddGpu                = "AddGpu"
	PropertyAddRobots             = "AddRobots"
)

// ModuleProperties maps the module flag properties to modules
var ModuleProperties = map[string]sizing.Module{
	PropertyActionCenter:          sizing.ActionCenter,
	PropertyTestManager:           sizing.TestManager,
	PropertyInsights:              sizing.Insights,
	PropertyAutomationHub:         sizing.AutomationHub,
	PropertyAutomationOps:         sizing.AutomationOps,
	PropertyTaskMining:            sizing.TaskMining,
	PropertyAiCenter:              sizing.AICenter,
	PropertyDocumentUnderstanding: sizing.DocumentUnderstanding,
	PropertyBusinessApps:          sizing.BusinessApps,
}
