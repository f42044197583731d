package resource

import "fmt"

// Builtin returns the resource descriptors this client knows about,
// keyed by resource name. The map and everything in it must be treated
// as read-only.
func Builtin() map[string]*Descriptor {
	return map[string]*Descriptor{
		"credential":   Credential(),
		"project":      Project(),
		"job_template": JobTemplate(),
		"job":          Job(),
	}
}

// Credential describes the credential resource.
func Credential() *Descriptor {
	return &Descriptor{
		Name:     "credential",
		Endpoint: "/credentials/",
		Identity: []string{"user", "team", "kind", "name"},
		Fields: []Field{
			{Name: "name", Required: true, Unique: true, Display: true},
			{Name: "description"},
			{Name: "user", Kind: KindInt, Help: "Owning user id."},
			{Name: "team", Kind: KindInt, Help: "Owning team id."},
			{
				Name: "kind", Required: true, Display: true, Kind: KindMapped,
				Choices: []Choice{
					{Input: "ssh", Value: "ssh"},
					{Input: "scm", Value: "scm"},
					{Input: "aws", Value: "aws"},
					{Input: "rax", Value: "rax"},
					{Input: "vmware", Value: "vmware"},
					{Input: "gce", Value: "gce"},
					{Input: "azure", Value: "azure"},
					{Input: "openstack", Value: "openstack"},
				},
				Help: "The type of credential being added.",
			},
			{Name: "host", Help: "The hostname or IP address to use."},
			{Name: "project", Help: "The identifier for the project."},
			{Name: "username", Display: true, Help: "The username. For AWS credentials, the access key."},
			{Name: "password", Password: true, Help: "The password. For AWS credentials, the secret key."},
			{Name: "ssh_key_data", Kind: KindFile, Help: "Path to the SSH private key to store."},
			{Name: "ssh_key_unlock", Password: true},
			{
				Name: "become_method", Kind: KindMapped,
				Choices: []Choice{
					{Input: "None", Value: ""},
					{Input: "sudo", Value: "sudo"},
					{Input: "su", Value: "su"},
					{Input: "pbrun", Value: "pbrun"},
					{Input: "pfexec", Value: "pfexec"},
				},
				Help: "Privilege escalation method.",
			},
			{Name: "become_username"},
			{Name: "become_password", Password: true},
			{Name: "vault_password", Password: true},
		},
	}
}

// Project describes the project resource.
//
// Projects with an organization are created under the organization's
// projects endpoint; modify never accepts the organization field, since
// it acts as an identifier rather than a mutable attribute.
func Project() *Descriptor {
	return &Descriptor{
		Name:     "project",
		Endpoint: "/projects/",
		Fields: []Field{
			{Name: "name", Required: true, Unique: true, Display: true},
			{Name: "description"},
			{Name: "organization", Kind: KindInt},
			{
				Name: "scm_type", Required: true, Display: true, Kind: KindMapped,
				Choices: []Choice{
					{Input: "manual", Value: ""},
					{Input: "git", Value: "git"},
					{Input: "hg", Value: "hg"},
					{Input: "svn", Value: "svn"},
				},
			},
			{Name: "scm_url", Display: true},
			{Name: "local_path", Help: "For manual projects, the server playbook directory name."},
			{Name: "scm_branch"},
			{Name: "scm_credential", Kind: KindInt},
			{Name: "scm_clean", Kind: KindBool},
			{Name: "scm_delete_on_update", Kind: KindBool},
			{Name: "scm_update_on_launch", Kind: KindBool},
		},
		CreateEndpoint: func(payload map[string]any) string {
			if org, ok := payload["organization"]; ok && org != nil && org != "" {
				return fmt.Sprintf("/organizations/%v/projects/", org)
			}
			return "/projects/"
		},
	}
}

// JobTemplate describes the job template resource.
func JobTemplate() *Descriptor {
	return &Descriptor{
		Name:     "job_template",
		Endpoint: "/job_templates/",
		Fields: []Field{
			{Name: "name", Required: true, Unique: true, Display: true},
			{Name: "description"},
			{
				Name: "job_type", Required: true, Display: true, Kind: KindMapped,
				Choices: []Choice{
					{Input: "run", Value: "run"},
					{Input: "check", Value: "check"},
				},
			},
			{Name: "inventory", Required: true, Kind: KindInt},
			{Name: "project", Required: true, Kind: KindInt, Display: true},
			{Name: "playbook", Required: true, Display: true},
			{Name: "machine_credential", Kind: KindInt},
			{Name: "cloud_credential", Kind: KindInt},
			{Name: "forks", Kind: KindInt},
			{Name: "limit"},
			{Name: "verbosity", Kind: KindInt},
			{Name: "extra_vars"},
			{Name: "job_tags"},
			{Name: "ask_variables_on_launch", Kind: KindBool},
		},
	}
}

// Job describes the job resource.
//
// Jobs are launched from templates rather than created field by field, so
// the descriptor carries no creatable fields; it exists for status display
// and endpoint layout.
func Job() *Descriptor {
	return &Descriptor{
		Name:     "job",
		Endpoint: "/jobs/",
		Fields: []Field{
			{Name: "name", Display: true},
			{Name: "status", Display: true},
			{Name: "elapsed", Display: true},
			{Name: "failed", Kind: KindBool, Display: true},
		},
	}
}
