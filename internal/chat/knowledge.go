package chat

import "github.com/cleanexit/cleanexit/internal/model"

// Rules returns the built-in rule set in match order. The six product topics
// come first, followed by the standards and how-to knowledge base, whose
// keywords only match whole words.
func Rules() []Rule {
	return []Rule{
		{
			Topic:    TopicPricing,
			Keywords: []string{"price", "cost", "pricing"},
			Response: PricingResponse(model.DefaultPlans),
		},
		{
			Topic:    TopicCompliance,
			Keywords: []string{"compliance", "gdpr", "hipaa"},
			Response: "We're certified for all major compliance standards including GDPR, HIPAA, SOX, and PCI-DSS. " +
				"Our processes meet NIST 800-88 guidelines and we provide detailed audit trails and certificates of destruction. " +
				"Which specific compliance requirements do you need to meet?",
		},
		{
			Topic:    TopicMobile,
			Keywords: []string{"mobile", "phone", "device"},
			Response: "Our mobile device management includes secure wiping of iOS, Android, and Windows devices. " +
				"We support both corporate-owned and BYOD scenarios with remote wipe capabilities. " +
				"We can also handle legacy devices and provide pickup services. How many devices are we talking about?",
		},
		{
			Topic:    TopicCloud,
			Keywords: []string{"cloud", "server", "database"},
			Response: "For cloud and server environments, we provide both logical deletion and cryptographic erasure. " +
				"Our team works with AWS, Azure, Google Cloud, and on-premise infrastructure. " +
				"We can also handle database sanitization while maintaining operational continuity. " +
				"What type of environment are you working with?",
		},
		{
			Topic:    TopicEmergency,
			Keywords: []string{"emergency", "urgent", "breach"},
			Response: "I understand this is urgent. Our emergency response team is available 24/7 and can be mobilized immediately. " +
				"For data breach scenarios, we can coordinate with your incident response team and legal counsel. " +
				"Should I escalate this to our emergency coordinator right away?",
		},
		{
			Topic:    TopicCertificate,
			Keywords: []string{"certificate", "proof", "documentation"},
			Response: "We provide comprehensive documentation including certificates of destruction, detailed audit logs, " +
				"chain of custody reports, and compliance attestations. All documentation is digitally signed and legally admissible. " +
				"Would you like to see a sample certificate?",
		},
		{
			Topic:     "nist-800-88",
			WholeWord: true,
			Keywords:  []string{"nist", "800-88"},
			Response:  "NIST SP 800-88 Rev. 1 defines three sanitization levels:\n\n" +
				"Clear: logical overwrite of user-addressable storage, suitable when media stays inside your organization.\n\n" +
				"Purge: firmware-level commands such as ATA Secure Erase, NVMe Format or cryptographic erase, " +
				"suitable when media leaves your control.\n\n" +
				"Destroy: shredding, disintegration or incineration when media cannot be reused.\n\n" +
				"Every wipe we run is verified and recorded on a certificate that names the method applied.",
		},
		{
			Topic:     "dod-5220",
			WholeWord: true,
			Keywords:  []string{"dod", "5220"},
			Response:  "DoD 5220.22-M is the classic three-pass overwrite (zeros, ones, then random data with verification). " +
				"It is still requested by many procurement teams, although NIST 800-88 has replaced it for modern drives.\n\n" +
				"We can run a DoD-style overwrite on magnetic disks on request. For SSDs we recommend a NIST Purge instead, " +
				"because overwriting cannot reach over-provisioned flash cells.",
		},
		{
			Topic:     "iso-27001",
			WholeWord: true,
			Keywords:  []string{"iso 27001", "iso27001", "27001"},
			Response:  "ISO/IEC 27001 Annex A requires secure disposal and reuse of equipment (control 7.14) " +
				"and deletion of information that is no longer required (control 8.10).\n\n" +
				"Our certificates of erasure and chain of custody reports are accepted as audit evidence for both controls.",
		},
		{
			Topic:     "sox",
			WholeWord: true,
			Keywords:  []string{"sox", "sarbanes"},
			Response:  "Sarbanes-Oxley does not prescribe a wipe method, but auditors expect documented retention and disposal of financial records.\n\n" +
				"We keep a tamper-evident record of every certificate we issue, so you can prove when and how each device was sanitized.",
		},
		{
			Topic:     "pci-dss",
			WholeWord: true,
			Keywords:  []string{"pci", "cardholder"},
			Response:  "PCI-DSS requirement 9.4.7 asks that media containing cardholder data is destroyed when no longer needed, " +
				"and requirement 3.2.1 limits how long that data may be retained.\n\n" +
				"We sanitize payment terminals, POS servers and backup media and issue a certificate per device for your QSA.",
		},
		{
			Topic:     "ssd-vs-hdd",
			WholeWord: true,
			Keywords:  []string{"ssd", "hdd", "hard drive", "solid state", "nvme", "flash"},
			Response:  "Hard disk drives can be cleared reliably with a single verified overwrite pass.\n\n" +
				"SSDs and NVMe drives remap blocks internally, so overwriting is not enough. " +
				"We use the drive's Secure Erase or Sanitize command, or cryptographic erase on self-encrypting drives, " +
				"and verify the result before issuing a certificate.",
		},
		{
			Topic:     "wipe-guide",
			WholeWord: true,
			Keywords:  []string{"how to", "how do i", "guide", "steps", "wipe"},
			Response:  "Here is how a wipe works with Cleanexit:\n\n" +
				"1. Sign in and open the Wipe page.\n" +
				"2. Choose the device type you are sanitizing.\n" +
				"3. Start the wipe and keep the device powered until it completes.\n" +
				"4. Download the certificate of erasure. It lists the certificate ID, device, standard and timestamp.\n\n" +
				"Each completed wipe counts against your plan's monthly device quota.",
		},
		{
			Topic:     "greeting",
			WholeWord: true,
			Keywords:  []string{"hello", "good morning", "good afternoon", "good evening"},
			Response:  "Hello! I'm Sid, your data security assistant. I can help with pricing, compliance standards, " +
				"device wiping and certificates. What would you like to know?",
		},
	}
}

// DefaultResponses is the pool used when no rule matches.
func DefaultResponses() []string {
	return []string{
		"I'd be happy to help! Could you tell me more about your specific data security needs? " +
			"Are you looking at hard drive destruction, mobile device wiping, or enterprise server decommissioning?",
		"Our data erasure services cover everything from individual devices to enterprise-wide infrastructure. " +
			"What type of data or devices do you need securely erased?",
		"Security is our top priority. All our processes are NIST 800-88 compliant with multiple verification steps. " +
			"What compliance standards do you need to meet?",
		"We serve Fortune 500 companies, healthcare systems, and government agencies. " +
			"Our team can handle projects of any scale. What's the scope of your data security project?",
		"I can connect you with one of our data security specialists for a detailed consultation. " +
			"What's the best way to reach you, and what's your timeline?",
	}
}
